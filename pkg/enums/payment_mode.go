package enums

import (
	"fmt"
	"strings"
)

// PaymentMode maps to the payment_mode enum in Postgres. Suppliers advertise
// the payment arrangements they accept; schools filter the directory by them.
type PaymentMode string

const (
	PaymentModeOnline        PaymentMode = "online"
	PaymentModeInvoice       PaymentMode = "invoice"
	PaymentModeInstallment   PaymentMode = "installment"
	PaymentModePurchaseOrder PaymentMode = "purchase_order"
)

var validPaymentModes = []PaymentMode{
	PaymentModeOnline,
	PaymentModeInvoice,
	PaymentModeInstallment,
	PaymentModePurchaseOrder,
}

// String implements fmt.Stringer.
func (p PaymentMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMode.
func (p PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMode converts raw input into a PaymentMode, case-insensitively.
func ParsePaymentMode(value string) (PaymentMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
