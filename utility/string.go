package utility

import (
	"github.com/google/uuid"
	"strconv"
)

// AsPrice formats a dollar amount like 102.336 to 102.34
func AsPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func NewUUID() string {
	return uuid.New().String()
}
