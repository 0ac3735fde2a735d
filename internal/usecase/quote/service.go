package quote

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainQuote "logipro/internal/domain/quote"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

type EstimateRequest struct {
	Origin      string          `json:"origin" validate:"required,max=255"`
	Destination string          `json:"destination" validate:"required,max=255"`
	PackageType string          `json:"package_type" validate:"required,package_type"`
	Weight      decimal.Decimal `json:"weight"`
}

type Service struct {
	requestRepo domainQuote.RequestRepository
}

func NewService(requestRepo domainQuote.RequestRepository) *Service {
	return &Service{requestRepo: requestRepo}
}

// Estimate prices a shipment and records the request for analytics.
// customerID is nil for anonymous callers.
func (s *Service) Estimate(ctx context.Context, customerID *uuid.UUID, req *EstimateRequest) (*domainQuote.Estimate, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	pkg := domainQuote.PackageType(req.PackageType)
	estimate, err := domainQuote.Calculate(req.Origin, req.Destination, pkg, req.Weight)
	if err != nil {
		return nil, err
	}

	record := &domainQuote.Request{
		Origin:        utils.SanitizeString(req.Origin),
		Destination:   utils.SanitizeString(req.Destination),
		PackageType:   pkg,
		Weight:        req.Weight,
		Price:         estimate.Price,
		EstimatedDays: estimate.EstimatedDays,
		Distance:      estimate.Distance,
		CustomerID:    customerID,
	}
	if err := s.requestRepo.Create(ctx, record); err != nil {
		logger.Warn("Failed to record quote request",
			zap.String("origin", record.Origin),
			zap.String("destination", record.Destination),
			zap.Error(err),
		)
	}

	return estimate, nil
}
