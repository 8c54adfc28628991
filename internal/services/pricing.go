package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CalculateTotal prices a booking: base price plus every selected customization, per participant
func CalculateTotal(trip *models.Trip, participants int, customizations []string) (decimal.Decimal, error) {
	perPerson := trip.BasePrice
	for _, name := range customizations {
		opt, ok := trip.CustomizationOptions.Find(name)
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown customization %q", name)
		}
		perPerson = perPerson.Add(opt.PricePerPerson)
	}
	return perPerson.Mul(decimal.NewFromInt(int64(participants))).Round(2), nil
}

// CalculateCommission returns total * rate / 100 rounded half away from zero to cents
func CalculateCommission(total, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Div(hundred).Round(2)
}
