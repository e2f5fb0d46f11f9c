package models

type PaymentRecord struct {
	Id          string  `json:"id" bson:"id"`
	UserId      string  `json:"user_id" bson:"user_id"`
	Amount      float64 `json:"amount" bson:"amount"`
	Date        string  `json:"date" bson:"date"`
	Status      string  `json:"status" bson:"status"`
	Description string  `json:"description" bson:"description"`
	Invoice     string  `json:"invoice,omitempty" bson:"invoice,omitempty"`
	ReceiptUrl  string  `json:"receipt_url,omitempty" bson:"receipt_url,omitempty"`
}

func (r *PaymentRecord) DataType() string {
	return "payment_record"
}
