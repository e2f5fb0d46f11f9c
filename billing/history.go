package billing

import "rotahub/models"

// History holds a user's gateway payment records as supplied at
// construction. The gateway is the source of truth; this layer only
// passes records through for display and export.
type History struct {
	records []models.PaymentRecord
}

func NewHistory(records []models.PaymentRecord) *History {
	return &History{records: records}
}

func (h *History) PaymentHistory() []models.PaymentRecord {
	return h.records
}

// FormatPaymentHistory is an extension point for future sorting or
// redaction; today it returns the records unchanged.
func FormatPaymentHistory(records []models.PaymentRecord) []models.PaymentRecord {
	return records
}
