package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Payment card checks for checkout.  No charge is ever made; the
// number is validated, reduced to its last four digits and discarded.

var (
	ErrCardNumber = errors.New("invalid card number")
	ErrCardExpiry = errors.New("invalid or expired card expiry")
)

// ValidateCardNumber accepts 13-19 digits (spaces and dashes allowed)
// that pass the Luhn check and returns the normalized digit string.
func ValidateCardNumber(number string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
	if len(digits) < 13 || len(digits) > 19 {
		return "", ErrCardNumber
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return "", ErrCardNumber
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	if sum%10 != 0 {
		return "", ErrCardNumber
	}
	return digits, nil
}

// ValidateCardExpiry parses MM/YY and rejects cards expired before the
// given moment.  A card is valid through the last day of its month.
func ValidateCardExpiry(expiry string, now time.Time) error {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return ErrCardExpiry
	}
	month, err1 := strconv.Atoi(parts[0])
	year, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return ErrCardExpiry
	}
	// Expiry is exclusive: first instant of the following month.
	end := time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !now.UTC().Before(end) {
		return ErrCardExpiry
	}
	return nil
}

// CardLast4 returns the last four digits of a normalized card number.
func CardLast4(digits string) string {
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
