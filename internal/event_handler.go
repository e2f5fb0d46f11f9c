package internal

import "time"

type EventHandler interface {
	OnCheckoutCreated(event *EventMessage)
	OnCheckoutFailed(event *EventMessage)
	OnPaymentRecorded(event *EventMessage)
}

type EventMessage struct {
	Type     string      `json:"type" bson:"type"`
	UserId   string      `json:"user_id" bson:"user_id"`
	Username string      `json:"username" bson:"username"`
	PlanId   string      `json:"plan_id" bson:"plan_id"`
	Order    int         `json:"order" bson:"order"`
	Amount   float64     `json:"amount" bson:"amount"`
	Time     time.Time   `json:"time" bson:"time"`
	Status   string      `json:"status" bson:"status"`
	Info     string      `json:"info" bson:"info"`
	Payload  interface{} `json:"payload" bson:"payload"`
}
