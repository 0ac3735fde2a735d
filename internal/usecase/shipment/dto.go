package shipment

import (
	"io"
	"time"

	"github.com/google/uuid"

	domainShipment "logipro/internal/domain/shipment"
)

type AssignRequest struct {
	DriverID           *uuid.UUID `json:"driver_id"`
	VehicleID          *uuid.UUID `json:"vehicle_id"`
	EstimatedDeparture *time.Time `json:"estimated_departure"`
	EstimatedArrival   *time.Time `json:"estimated_arrival"`
}

type MarkDeliveredRequest struct {
	SignatureName *string `json:"signature_name" form:"signature_name" validate:"omitempty,max=255"`
}

type MarkFailedRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type CheckpointRequest struct {
	Status      string `json:"status" validate:"required,oneof=PICKED_UP IN_TRANSIT OUT_FOR_DELIVERY"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateShipmentRequest is a partial update. Status is accepted so clients
// can send whole objects back, but it is always ignored.
type UpdateShipmentRequest struct {
	Status             *string    `json:"status"`
	VehicleID          *uuid.UUID `json:"vehicle_id"`
	EstimatedDeparture *time.Time `json:"estimated_departure"`
	EstimatedArrival   *time.Time `json:"estimated_arrival"`
	ActualDeparture    *time.Time `json:"actual_departure"`
	ActualArrival      *time.Time `json:"actual_arrival"`
	SignatureName      *string    `json:"signature_name" validate:"omitempty,max=255"`
}

type ListShipmentsRequest struct {
	Status   *string    `form:"status" validate:"omitempty,oneof=PENDING ASSIGNED IN_TRANSIT DELIVERED FAILED"`
	DriverID *uuid.UUID `form:"-"`
	JobID    *uuid.UUID `form:"-"`
	Page     int        `form:"page" validate:"omitempty,min=1"`
	PageSize int        `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// ImageUpload is a proof-of-delivery file as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type ShipmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	JobID              uuid.UUID  `json:"job_id"`
	DriverID           *uuid.UUID `json:"driver_id"`
	VehicleID          *uuid.UUID `json:"vehicle_id"`
	Status             string     `json:"status"`
	AllowedTransitions []string   `json:"allowed_transitions"`
	EstimatedDeparture *time.Time `json:"estimated_departure"`
	EstimatedArrival   *time.Time `json:"estimated_arrival"`
	ActualDeparture    *time.Time `json:"actual_departure"`
	ActualArrival      *time.Time `json:"actual_arrival"`
	ProofOfDeliveryURL *string    `json:"proof_of_delivery_url"`
	SignatureName      *string    `json:"signature_name"`
	FailureReason      *string    `json:"failure_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type AssignmentResponse struct {
	*ShipmentResponse
	JobNumber         int64      `json:"job_number"`
	PickupAddress     string     `json:"pickup_address"`
	PickupCity        string     `json:"pickup_city"`
	DeliveryAddress   string     `json:"delivery_address"`
	DeliveryCity      string     `json:"delivery_city"`
	RequestedPickupAt *time.Time `json:"requested_pickup_at,omitempty"`
}

func ToShipmentResponse(s *domainShipment.Shipment) *ShipmentResponse {
	next := domainShipment.AllowedTransitions(s.Status)
	allowed := make([]string, len(next))
	for i, st := range next {
		allowed[i] = string(st)
	}

	return &ShipmentResponse{
		ID:                 s.ID,
		JobID:              s.JobID,
		DriverID:           s.DriverID,
		VehicleID:          s.VehicleID,
		Status:             string(s.Status),
		AllowedTransitions: allowed,
		EstimatedDeparture: s.EstimatedDeparture,
		EstimatedArrival:   s.EstimatedArrival,
		ActualDeparture:    s.ActualDeparture,
		ActualArrival:      s.ActualArrival,
		ProofOfDeliveryURL: s.ProofOfDeliveryURL,
		SignatureName:      s.SignatureName,
		FailureReason:      s.FailureReason,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func toAssignmentResponse(a *domainShipment.Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		ShipmentResponse:  ToShipmentResponse(a.Shipment),
		JobNumber:         a.JobNumber,
		PickupAddress:     a.PickupAddress,
		PickupCity:        a.PickupCity,
		DeliveryAddress:   a.DeliveryAddress,
		DeliveryCity:      a.DeliveryCity,
		RequestedPickupAt: a.RequestedPickupAt,
	}
}
