// Package validation checks customer-supplied checkout fields.
package validation

import (
	"regexp"
	"sort"
	"strings"
)

const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldAddress = "address"

	minNameLength    = 2
	minAddressLength = 10
)

const (
	MsgNameRequired    = "Please enter your full name"
	MsgPhoneInvalid    = "Please enter a valid 10-digit Indian phone number"
	MsgEmailInvalid    = "Please enter a valid email address"
	MsgAddressRequired = "Please enter a complete delivery address"
)

var (
	nonDigitRegex = regexp.MustCompile(`\D`)
	phoneRegex    = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// CustomerInput is the raw form payload.
type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// Customer is the normalized, validated form of CustomerInput.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// FieldErrors maps a field name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	return nonDigitRegex.ReplaceAllString(phone, "")
}

// ValidPhone reports whether phone is a 10-digit Indian mobile number.
func ValidPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

// ValidEmail reports whether email has a local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// ValidateCustomer returns the normalized customer, or the per-field errors.
func ValidateCustomer(in CustomerInput) (Customer, FieldErrors) {
	errs := FieldErrors{}

	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < minNameLength {
		errs[FieldName] = MsgNameRequired
	}

	phone := NormalizePhone(in.Phone)
	if !phoneRegex.MatchString(phone) {
		errs[FieldPhone] = MsgPhoneInvalid
	}

	email := strings.TrimSpace(in.Email)
	if email != "" && !emailRegex.MatchString(email) {
		errs[FieldEmail] = MsgEmailInvalid
	}

	address := strings.TrimSpace(in.Address)
	if len([]rune(address)) < minAddressLength {
		errs[FieldAddress] = MsgAddressRequired
	}

	if len(errs) > 0 {
		return Customer{}, errs
	}

	return Customer{
		Name:    name,
		Phone:   phone,
		Email:   strings.ToLower(email),
		Address: address,
	}, nil
}
