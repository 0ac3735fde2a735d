// Package tracking serves the unauthenticated tracking page and homepage
// counters. Responses never carry contact details or prices.
package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainFleet "logipro/internal/domain/fleet"
	domainJob "logipro/internal/domain/job"
	domainShipment "logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	jobUsecase "logipro/internal/usecase/job"
)

type TrackingResponse struct {
	JobNumber          int64                               `json:"job_number"`
	ServiceType        string                              `json:"service_type"`
	PickupCity         string                              `json:"pickup_city"`
	DeliveryCity       string                              `json:"delivery_city"`
	CurrentStatus      string                              `json:"current_status"`
	CurrentStatusLabel string                              `json:"current_status_label"`
	CurrentLocation    string                              `json:"current_location,omitempty"`
	ShipmentStatus     string                              `json:"shipment_status,omitempty"`
	DriverName         string                              `json:"driver_name,omitempty"`
	EstimatedArrival   *time.Time                          `json:"estimated_arrival,omitempty"`
	DeliveredAt        *time.Time                          `json:"delivered_at,omitempty"`
	ProofOfDeliveryURL *string                             `json:"proof_of_delivery_url,omitempty"`
	Timeline           []*jobUsecase.TimelineEntryResponse `json:"timeline"`
}

type Service struct {
	jobRepo      domainJob.Repository
	shipmentRepo domainShipment.Repository
	timelineRepo timeline.Repository
	driverRepo   domainFleet.DriverRepository
}

func NewService(jobRepo domainJob.Repository, shipmentRepo domainShipment.Repository, timelineRepo timeline.Repository, driverRepo domainFleet.DriverRepository) *Service {
	return &Service{
		jobRepo:      jobRepo,
		shipmentRepo: shipmentRepo,
		timelineRepo: timelineRepo,
		driverRepo:   driverRepo,
	}
}

// Resolve confirms jobNumber exists before a live socket is opened for it.
func (s *Service) Resolve(ctx context.Context, jobNumber int64) (*domainJob.Job, error) {
	return s.jobRepo.GetByNumber(ctx, jobNumber)
}

func (s *Service) Track(ctx context.Context, jobNumber int64) (*TrackingResponse, error) {
	j, err := s.jobRepo.GetByNumber(ctx, jobNumber)
	if err != nil {
		return nil, err
	}

	entries, err := s.timelineRepo.ListByJob(ctx, j.ID)
	if err != nil {
		return nil, err
	}

	resp := &TrackingResponse{
		JobNumber:    j.JobNumber,
		ServiceType:  string(j.ServiceType),
		PickupCity:   j.Pickup.City,
		DeliveryCity: j.Delivery.City,
		Timeline:     make([]*jobUsecase.TimelineEntryResponse, len(entries)),
	}
	for i, e := range entries {
		resp.Timeline[i] = jobUsecase.ToTimelineResponse(e)
		if e.IsCurrent {
			resp.CurrentStatus = string(e.Status)
			resp.CurrentStatusLabel = e.Status.Label()
			resp.CurrentLocation = e.Location
		}
	}

	sh, err := s.shipmentRepo.GetByJobID(ctx, j.ID)
	if err != nil {
		if errors.Is(err, domainShipment.ErrShipmentNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.ShipmentStatus = string(sh.Status)
	resp.EstimatedArrival = sh.EstimatedArrival

	if sh.Status == domainShipment.StatusDelivered {
		resp.DeliveredAt = sh.ActualArrival
		resp.ProofOfDeliveryURL = sh.ProofOfDeliveryURL
	}

	if sh.DriverID != nil {
		resp.DriverName = s.driverName(ctx, *sh.DriverID)
	}
	return resp, nil
}

// driverName is cosmetic; a missing profile leaves the name blank.
func (s *Service) driverName(ctx context.Context, driverID uuid.UUID) string {
	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return ""
	}
	return d.FullName
}

func (s *Service) PublicStats(ctx context.Context) (*domainJob.PublicStats, error) {
	return s.jobRepo.PublicStats(ctx)
}
