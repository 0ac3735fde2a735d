package quote

import (
	"strings"

	"github.com/shopspring/decimal"

	appErrors "logipro/pkg/errors"
)

type PackageType string

const (
	PackageSmall  PackageType = "small"
	PackageMedium PackageType = "medium"
	PackageLarge  PackageType = "large"
	PackagePallet PackageType = "pallet"
)

const ServiceStandard = "STANDARD"

var (
	basePrice   = decimal.NewFromInt(50)
	perPound    = decimal.RequireFromString("0.50")
	perDistance = decimal.RequireFromString("0.15")

	multipliers = map[PackageType]decimal.Decimal{
		PackageSmall:  decimal.NewFromInt(1),
		PackageMedium: decimal.RequireFromString("1.5"),
		PackageLarge:  decimal.NewFromInt(2),
		PackagePallet: decimal.NewFromInt(3),
	}
)

func (p PackageType) IsValid() bool {
	_, ok := multipliers[p]
	return ok
}

type Estimate struct {
	Price         decimal.Decimal `json:"price"`
	Distance      int             `json:"distance"`
	EstimatedDays string          `json:"estimated_days"`
	ServiceType   string          `json:"service_type"`
}

// Distance derives a stable pseudo-distance in miles from the two place
// names. It stands in for a routing service and always lands in [100, 2999].
func Distance(origin, destination string) int {
	sum := 0
	for _, r := range strings.ToLower(origin + destination) {
		sum += int(r)
	}
	return sum%2900 + 100
}

func TransitDays(distance int) string {
	switch {
	case distance < 500:
		return "1-2"
	case distance < 1500:
		return "2-3"
	case distance < 2500:
		return "3-4"
	default:
		return "4-5"
	}
}

// Calculate prices a shipment. Prices are rounded to cents, halves away from zero.
func Calculate(origin, destination string, pkg PackageType, weight decimal.Decimal) (*Estimate, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return nil, appErrors.Validation("origin and destination are required", nil)
	}
	multiplier, ok := multipliers[pkg]
	if !ok {
		return nil, appErrors.Validation("package_type must be one of small, medium, large, pallet", nil)
	}
	if !weight.IsPositive() {
		return nil, appErrors.Validation("weight must be greater than zero", nil)
	}

	distance := Distance(origin, destination)
	price := basePrice.
		Add(weight.Mul(perPound)).
		Add(decimal.NewFromInt(int64(distance)).Mul(perDistance)).
		Mul(multiplier).
		Round(2)

	return &Estimate{
		Price:         price,
		Distance:      distance,
		EstimatedDays: TransitDays(distance),
		ServiceType:   ServiceStandard,
	}, nil
}
