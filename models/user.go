package models

import "time"

type User struct {
	Username       string    `json:"username" bson:"username"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	Role           string    `json:"role" bson:"role"`
	UserId         string    `json:"user_id" bson:"user_id"`
	DateRegistered time.Time `json:"date_registered" bson:"date_registered"`
	LastSeen       time.Time `json:"last_seen" bson:"last_seen"`
}

func (u *User) DataType() string {
	return "user"
}
