package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCardNumber(t *testing.T) {
	// Standard test card numbers pass the Luhn check.
	digits, err := ValidateCardNumber("4242 4242 4242 4242")
	require.NoError(t, err)
	assert.Equal(t, "4242424242424242", digits)

	_, err = ValidateCardNumber("4242-4242-4242-4242")
	assert.NoError(t, err)

	_, err = ValidateCardNumber("4242424242424241") // bad checksum
	assert.ErrorIs(t, err, ErrCardNumber)

	_, err = ValidateCardNumber("1234")
	assert.ErrorIs(t, err, ErrCardNumber)

	_, err = ValidateCardNumber("4242x242424242424")
	assert.ErrorIs(t, err, ErrCardNumber)
}

func TestValidateCardExpiry(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateCardExpiry("08/26", now)) // valid through month end
	assert.NoError(t, ValidateCardExpiry("12/30", now))
	assert.ErrorIs(t, ValidateCardExpiry("07/26", now), ErrCardExpiry)
	assert.ErrorIs(t, ValidateCardExpiry("13/30", now), ErrCardExpiry)
	assert.ErrorIs(t, ValidateCardExpiry("0830", now), ErrCardExpiry)
	assert.ErrorIs(t, ValidateCardExpiry("8/30", now), ErrCardExpiry)
}

func TestCardLast4(t *testing.T) {
	assert.Equal(t, "4242", CardLast4("4242424242424242"))
	assert.Equal(t, "123", CardLast4("123"))
}
