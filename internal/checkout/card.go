package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bakery-storefront/internal/models"
)

const (
	cardNumberLength = 16
	cvvLength        = 3
	minNameLength    = 3
)

// Payment field names used in validation results
const (
	FieldCardNumber     = "cardNumber"
	FieldExpiry         = "expiry"
	FieldCVV            = "cvv"
	FieldCardholderName = "cardholderName"
)

// CardBrand is inferred from the leading digits for display only
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandAmex       CardBrand = "amex"
	BrandUnknown    CardBrand = "unknown"
)

var expiryRegex = regexp.MustCompile(`^(\d{2})/(\d{2})$`)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCardNumber strips non-digits and truncates to 16 digits
func NormalizeCardNumber(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > cardNumberLength {
		digits = digits[:cardNumberLength]
	}
	return digits
}

// FormatCardNumber normalizes raw input and groups it in blocks of four
func FormatCardNumber(raw string) string {
	digits := NormalizeCardNumber(raw)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskCardNumber keeps only the last four digits visible
func MaskCardNumber(raw string) string {
	digits := NormalizeCardNumber(raw)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// LuhnValid reports whether number is a 16 digit string with a valid Luhn checksum
func LuhnValid(number string) bool {
	if len(number) != cardNumberLength {
		return false
	}

	sum := 0
	for i := 0; i < len(number); i++ {
		c := number[len(number)-1-i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}
	return sum%10 == 0
}

// DetectCardBrand infers the card brand from the leading digits
func DetectCardBrand(raw string) CardBrand {
	digits := NormalizeCardNumber(raw)
	if strings.HasPrefix(digits, "4") {
		return BrandVisa
	}
	if len(digits) < 2 {
		return BrandUnknown
	}
	prefix, _ := strconv.Atoi(digits[:2])
	switch {
	case prefix >= 51 && prefix <= 55, prefix >= 22 && prefix <= 27:
		return BrandMastercard
	case prefix == 34, prefix == 37:
		return BrandAmex
	default:
		return BrandUnknown
	}
}

// FormatExpiry rebuilds typed input as MM/YY. A leading 2-9 is a single digit
// month ("4" -> "04/"). A leading 0 or 1 reads up to two month digits unless
// they exceed 12, in which case only the first digit is the month.
func FormatExpiry(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}

	var month, year string
	switch {
	case digits[0] >= '2':
		month, year = "0"+digits[:1], digits[1:]
	case len(digits) == 1:
		return digits
	default:
		if mm, _ := strconv.Atoi(digits[:2]); mm > 12 {
			month, year = "0"+digits[:1], digits[1:]
		} else {
			month, year = digits[:2], digits[2:]
		}
	}

	if len(year) > 2 {
		year = year[:2]
	}
	return month + "/" + year
}

// FormatCVV keeps at most three digits
func FormatCVV(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > cvvLength {
		digits = digits[:cvvLength]
	}
	return digits
}

// FormatPaymentInput applies keystroke normalization to every card field
func FormatPaymentInput(input models.PaymentInput) models.PaymentInput {
	return models.PaymentInput{
		CardNumber:     FormatCardNumber(input.CardNumber),
		Expiry:         FormatExpiry(input.Expiry),
		CVV:            FormatCVV(input.CVV),
		CardholderName: input.CardholderName,
	}
}

func validateCardNumber(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) != cardNumberLength {
		return "Card number must be 16 digits"
	}
	if !LuhnValid(digits) {
		return "Invalid card number"
	}
	return ""
}

func validateExpiry(expiry string, now time.Time) string {
	matches := expiryRegex.FindStringSubmatch(expiry)
	if matches == nil {
		return "Expiry must be in MM/YY format"
	}
	month, _ := strconv.Atoi(matches[1])
	year, _ := strconv.Atoi(matches[2])
	if month < 1 || month > 12 {
		return "Invalid expiry month"
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return "Card has expired"
	}
	return ""
}

func validateCVV(cvv string) string {
	if len(cvv) != cvvLength || digitsOnly(cvv) != cvv {
		return "CVV must be 3 digits"
	}
	return ""
}

func validateCardholderName(name string) string {
	if len([]rune(strings.TrimSpace(name))) < minNameLength {
		return "Cardholder name must be at least 3 characters"
	}
	return ""
}

// ValidateExpiry reports whether expiry is a well formed MM/YY not before now's month
func ValidateExpiry(expiry string, now time.Time) bool {
	return validateExpiry(expiry, now) == ""
}

// ValidateCardDetails checks every card field and returns all failures at once
func ValidateCardDetails(input models.PaymentInput, now time.Time) models.FieldErrors {
	errs := models.FieldErrors{}
	if msg := validateCardNumber(input.CardNumber); msg != "" {
		errs[FieldCardNumber] = msg
	}
	if msg := validateExpiry(input.Expiry, now); msg != "" {
		errs[FieldExpiry] = msg
	}
	if msg := validateCVV(input.CVV); msg != "" {
		errs[FieldCVV] = msg
	}
	if msg := validateCardholderName(input.CardholderName); msg != "" {
		errs[FieldCardholderName] = msg
	}
	return errs
}
