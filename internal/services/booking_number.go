package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const bookingNumberPrefix = "AC"

var bookingNumberSpace = big.NewInt(10000)

// NewBookingNumber returns "AC" + YYMM + four random digits, e.g. AC26070042
func NewBookingNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, bookingNumberSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate booking number: %w", err)
	}
	return fmt.Sprintf("%s%s%04d", bookingNumberPrefix, now.Format("0601"), n.Int64()), nil
}
