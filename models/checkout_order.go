package models

import "time"

type CheckoutOrder struct {
	Order         int     `json:"order" bson:"order"`
	UserId        string  `json:"user_id" bson:"user_id"`
	UserName      string  `json:"user_name" bson:"user_name"`
	PlanId        string  `json:"plan_id" bson:"plan_id"`
	Kind          string  `json:"kind" bson:"kind"`
	Hours         int     `json:"hours" bson:"hours"`
	Amount        float64 `json:"amount" bson:"amount"`
	Currency      string  `json:"currency" bson:"currency"`
	Description   string  `json:"description" bson:"description"`
	SessionRef    string  `json:"session_ref" bson:"session_ref"`
	SessionUrl    string  `json:"session_url" bson:"session_url"`
	DiscountCode  string  `json:"discount_code" bson:"discount_code"`
	PaymentOption string  `json:"payment_option" bson:"payment_option"`
	Installments  int     `json:"installments" bson:"installments"`
	IsCompleted   bool    `json:"is_completed" bson:"is_completed"`
	Result        string  `json:"result" bson:"result"`

	TimeOpened time.Time `json:"time_opened" bson:"time_opened"`
	TimeClosed time.Time `json:"time_closed" bson:"time_closed"`
}

func (o *CheckoutOrder) DataType() string {
	return "checkout_order"
}
