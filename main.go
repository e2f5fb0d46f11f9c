package main

import (
	"log"
	"rotahub/internal/config"
	"rotahub/server"
)

func main() {

	conf, err := config.GetConfig()
	if err != nil {
		log.Println("configuration failed", err)
		return
	}

	marketplace, err := server.NewMarketplaceSystem(conf)
	if err != nil {
		log.Println("marketplace initialization failed", err)
		return
	}
	marketplace.Start()

}
