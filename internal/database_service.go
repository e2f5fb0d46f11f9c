package internal

import "rotahub/models"

type Database interface {
	Write(table string, data Data) error
	WriteLogMessage(data Data) error
	ReadLog() (interface{}, error)

	GetBillingPlans() ([]models.BillingPlan, error)

	GetUser(userId string) (*models.User, error)

	GetHourBalance(userId string) (*models.HourBalance, error)

	GetPaymentRecords(userId string) ([]models.PaymentRecord, error)

	GetLastOrder() (*models.CheckoutOrder, error)
	GetOpenOrder(userId string) (*models.CheckoutOrder, error)
	SaveOrder(order *models.CheckoutOrder) error

	GetSubscriptions() ([]models.UserSubscription, error)
	AddSubscription(subscription *models.UserSubscription) error
	DeleteSubscription(subscription *models.UserSubscription) error
}

type Data interface {
	DataType() string
}
