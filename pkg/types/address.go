package types

import "strings"

// Address is the shipping destination snapshot stored on an order.
type Address struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}

// Normalize fills defaults and trims whitespace on the user-entered fields.
func (a *Address) Normalize() {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	if strings.TrimSpace(a.Country) == "" {
		a.Country = "IN"
	}
}
