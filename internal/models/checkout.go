package models

// PickupSelection is the chosen collection date (YYYY-MM-DD) and slot label
type PickupSelection struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// IsComplete returns true when both date and time are set
func (p PickupSelection) IsComplete() bool {
	return p.Date != "" && p.Time != ""
}

// PaymentInput holds raw card fields as typed by the customer.
// Validity is always derived from these fields, never stored.
type PaymentInput struct {
	CardNumber     string `json:"cardNumber"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}
