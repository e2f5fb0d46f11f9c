package server

import (
	"fmt"
	"log"
	"rotahub/billing"
	"rotahub/internal"
	"rotahub/internal/config"
	"rotahub/metrics"
	"rotahub/models"
	"rotahub/telegram"
	"time"
)

type MarketplaceSystem struct {
	conf    *config.Config
	api     *Api
	logger  internal.LogHandler
	gateway *billing.Gateway
}

func NewMarketplaceSystem(conf *config.Config) (*MarketplaceSystem, error) {
	ms := &MarketplaceSystem{conf: conf}

	log.Println("set time zone to " + conf.TimeZone)
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone initialization failed: %s", err)
	}

	var database internal.Database
	if conf.Mongo.Enabled {
		database, err = internal.NewMongoClient(conf)
		if err != nil {
			return nil, fmt.Errorf("mongodb setup failed: %s", err)
		}
		if database != nil {
			log.Println("mongodb is configured and enabled")
		}
	} else {
		log.Println("database is disabled")
	}

	// logger with database sink for the event stream
	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)
	ms.logger = logService

	// catalog: stored plans with built-in defaults as fallback
	var plans []models.BillingPlan
	if database != nil {
		plans, err = database.GetBillingPlans()
		if err != nil {
			logService.Warn(fmt.Sprintf("loading plans failed, using defaults: %s", err))
			plans = nil
		}
	}
	catalog := billing.NewCatalog(plans)

	// payment gateway
	if conf.Gateway.Enabled {
		gateway := billing.NewGateway(conf)
		gateway.SetDatabase(database)
		gateway.SetLogger(logService)
		gateway.SetCatalog(catalog)
		ms.gateway = gateway
		log.Println("payment gateway is configured and enabled")
	} else {
		log.Println("payment gateway is disabled")
	}

	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey)
		if err != nil {
			return nil, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.SetDatabase(database)
		telegramBot.Start()
		if ms.gateway != nil {
			ms.gateway.AddEventListener(telegramBot)
		}
		log.Println("telegram bot is configured and enabled")
	}

	// api server
	apiServer := NewServerApi(conf, logService)
	apiServer.SetDatabase(database)
	apiServer.SetCatalog(catalog)
	apiServer.SetGateway(ms.gateway)
	ms.api = apiServer

	return ms, nil
}

func (ms *MarketplaceSystem) Start() {

	go func() {
		if err := metrics.Listen(ms.conf); err != nil {
			ms.logger.Error("metrics server failed", err)
		}
	}()

	go func() {
		if err := ms.api.Start(); err != nil {
			ms.logger.Error("api server failed", err)
		}
	}()

	select {}
}
