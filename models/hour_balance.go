package models

import "time"

// HourBalance is the raw hour-credit snapshot as stored for a student.
// Both fields are optional; the credits calculator applies the defaults.
type HourBalance struct {
	UserId         string    `json:"user_id" bson:"user_id"`
	TotalRemaining *float64  `json:"total_remaining,omitempty" bson:"total_remaining,omitempty"`
	TotalAllocated *float64  `json:"total_allocated,omitempty" bson:"total_allocated,omitempty"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

func (b *HourBalance) DataType() string {
	return "hour_balance"
}
