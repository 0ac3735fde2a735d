package job

import (
	"time"

	"github.com/google/uuid"

	domainJob "logipro/internal/domain/job"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
)

type StopRequest struct {
	Address       string `json:"address" validate:"required,max=500"`
	City          string `json:"city" validate:"required,max=100"`
	Region        string `json:"region" validate:"omitempty,region_code"`
	ContactPerson string `json:"contact_person" validate:"required,max=255"`
	ContactPhone  string `json:"contact_phone" validate:"required,phone"`
}

type CreateJobRequest struct {
	// CustomerID is required for staff and ignored for customers.
	CustomerID       *uuid.UUID  `json:"customer_id"`
	JobType          string      `json:"job_type" validate:"required,oneof=RESIDENTIAL COMMERCIAL"`
	ServiceType      string      `json:"service_type" validate:"required,service_type"`
	CargoDescription string      `json:"cargo_description" validate:"required,max=2000"`
	Pickup           StopRequest `json:"pickup" validate:"required"`
	Delivery         StopRequest `json:"delivery" validate:"required"`

	RequestedPickupAt *time.Time `json:"requested_pickup_at"`

	RoomCount      *int           `json:"room_count" validate:"omitempty,min=0,max=100"`
	VolumeCF       *int           `json:"volume_cf" validate:"omitempty,min=0"`
	CrewSize       *int           `json:"crew_size" validate:"omitempty,min=1,max=50"`
	EstimatedItems map[string]int `json:"estimated_items" validate:"omitempty,dive,keys,max=100,endkeys,min=0"`

	PalletCount  *int    `json:"pallet_count" validate:"omitempty,min=0"`
	WeightLbs    *int    `json:"weight_lbs" validate:"omitempty,min=0"`
	IsHazardous  bool    `json:"is_hazardous"`
	BOLNumber    *string `json:"bol_number" validate:"omitempty,max=100"`
	PricingModel *string `json:"pricing_model" validate:"omitempty,oneof=HOURLY FLAT_RATE CWT"`
}

// UpdateJobRequest is a partial update; job number, customer and service
// type are fixed at creation.
type UpdateJobRequest struct {
	CargoDescription  *string        `json:"cargo_description" validate:"omitempty,max=2000"`
	Pickup            *StopRequest   `json:"pickup"`
	Delivery          *StopRequest   `json:"delivery"`
	RequestedPickupAt *time.Time     `json:"requested_pickup_at"`
	RoomCount         *int           `json:"room_count" validate:"omitempty,min=0,max=100"`
	VolumeCF          *int           `json:"volume_cf" validate:"omitempty,min=0"`
	CrewSize          *int           `json:"crew_size" validate:"omitempty,min=1,max=50"`
	EstimatedItems    map[string]int `json:"estimated_items" validate:"omitempty,dive,keys,max=100,endkeys,min=0"`
	PalletCount       *int           `json:"pallet_count" validate:"omitempty,min=0"`
	WeightLbs         *int           `json:"weight_lbs" validate:"omitempty,min=0"`
	IsHazardous       *bool          `json:"is_hazardous"`
	BOLNumber         *string        `json:"bol_number" validate:"omitempty,max=100"`
	PricingModel      *string        `json:"pricing_model" validate:"omitempty,oneof=HOURLY FLAT_RATE CWT"`
}

type ListJobsRequest struct {
	CustomerID  *uuid.UUID `form:"-"`
	Status      *string    `form:"status" validate:"omitempty,oneof=ORDER_PLACED DRIVER_ASSIGNED PICKED_UP IN_TRANSIT OUT_FOR_DELIVERY DELIVERED FAILED"`
	ServiceType *string    `form:"service_type" validate:"omitempty,service_type"`
	Search      string     `form:"search" validate:"omitempty,max=100"`
	Page        int        `form:"page" validate:"omitempty,min=1"`
	PageSize    int        `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type StopResponse struct {
	Address       string `json:"address"`
	City          string `json:"city"`
	Region        string `json:"region,omitempty"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
}

type JobResponse struct {
	ID                uuid.UUID      `json:"id"`
	JobNumber         int64          `json:"job_number"`
	CustomerID        uuid.UUID      `json:"customer_id"`
	JobType           string         `json:"job_type"`
	ServiceType       string         `json:"service_type"`
	CargoDescription  string         `json:"cargo_description"`
	Pickup            StopResponse   `json:"pickup"`
	Delivery          StopResponse   `json:"delivery"`
	RequestedPickupAt *time.Time     `json:"requested_pickup_at,omitempty"`
	RoomCount         *int           `json:"room_count,omitempty"`
	VolumeCF          *int           `json:"volume_cf,omitempty"`
	CrewSize          *int           `json:"crew_size,omitempty"`
	EstimatedItems    map[string]int `json:"estimated_items,omitempty"`
	PalletCount       *int           `json:"pallet_count,omitempty"`
	WeightLbs         *int           `json:"weight_lbs,omitempty"`
	IsHazardous       bool           `json:"is_hazardous"`
	BOLNumber         *string        `json:"bol_number,omitempty"`
	PricingModel      *string        `json:"pricing_model,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type TimelineEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	IsCurrent   bool      `json:"is_current"`
	Timestamp   time.Time `json:"timestamp"`
}

type ShipmentSummary struct {
	ID        uuid.UUID  `json:"id"`
	Status    string     `json:"status"`
	DriverID  *uuid.UUID `json:"driver_id,omitempty"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
}

// JobDetailResponse is a job with its shipment and full timeline.
type JobDetailResponse struct {
	*JobResponse
	CurrentStatus *string                  `json:"current_status"`
	Shipment      *ShipmentSummary         `json:"shipment,omitempty"`
	Timeline      []*TimelineEntryResponse `json:"timeline"`
}

type CreateJobResponse struct {
	*JobResponse
	ShipmentID uuid.UUID `json:"shipment_id"`
	InvoiceID  uuid.UUID `json:"invoice_id"`
}

func toStopResponse(s domainJob.Stop) StopResponse {
	return StopResponse{
		Address:       s.Address,
		City:          s.City,
		Region:        s.Region,
		ContactPerson: s.ContactPerson,
		ContactPhone:  s.ContactPhone,
	}
}

func ToJobResponse(j *domainJob.Job) *JobResponse {
	resp := &JobResponse{
		ID:                j.ID,
		JobNumber:         j.JobNumber,
		CustomerID:        j.CustomerID,
		JobType:           string(j.JobType),
		ServiceType:       string(j.ServiceType),
		CargoDescription:  j.CargoDescription,
		Pickup:            toStopResponse(j.Pickup),
		Delivery:          toStopResponse(j.Delivery),
		RequestedPickupAt: j.RequestedPickupAt,
		RoomCount:         j.RoomCount,
		VolumeCF:          j.VolumeCF,
		CrewSize:          j.CrewSize,
		EstimatedItems:    j.EstimatedItems,
		PalletCount:       j.PalletCount,
		WeightLbs:         j.WeightLbs,
		IsHazardous:       j.IsHazardous,
		BOLNumber:         j.BOLNumber,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
	if j.PricingModel != nil {
		pm := string(*j.PricingModel)
		resp.PricingModel = &pm
	}
	return resp
}

func ToTimelineResponse(e *timeline.Entry) *TimelineEntryResponse {
	return &TimelineEntryResponse{
		ID:          e.ID,
		Status:      string(e.Status),
		StatusLabel: e.Status.Label(),
		Location:    e.Location,
		Description: e.Description,
		IsCurrent:   e.IsCurrent,
		Timestamp:   e.Timestamp,
	}
}

func toShipmentSummary(s *shipment.Shipment) *ShipmentSummary {
	if s == nil {
		return nil
	}
	return &ShipmentSummary{ID: s.ID, Status: string(s.Status), DriverID: s.DriverID, VehicleID: s.VehicleID}
}
