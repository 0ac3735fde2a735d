package job

import (
	"time"

	"github.com/google/uuid"
)

// FirstJobNumber is where the job number sequence starts.
const FirstJobNumber int64 = 1001

type JobType string

const (
	JobTypeResidential JobType = "RESIDENTIAL"
	JobTypeCommercial  JobType = "COMMERCIAL"
)

func (t JobType) IsValid() bool {
	return t == JobTypeResidential || t == JobTypeCommercial
}

type ServiceType string

const (
	ServiceResidentialMoving ServiceType = "RESIDENTIAL_MOVING"
	ServiceOfficeRelocation  ServiceType = "OFFICE_RELOCATION"
	ServicePalletDelivery    ServiceType = "PALLET_DELIVERY"
	ServiceSmallDeliveries   ServiceType = "SMALL_DELIVERIES"
)

func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceResidentialMoving, ServiceOfficeRelocation, ServicePalletDelivery, ServiceSmallDeliveries:
		return true
	}
	return false
}

type PricingModel string

const (
	PricingHourly   PricingModel = "HOURLY"
	PricingFlatRate PricingModel = "FLAT_RATE"
	PricingCWT      PricingModel = "CWT"
)

// Stop is one end of a job: where cargo is collected or dropped.
type Stop struct {
	Address       string
	City          string
	Region        string
	ContactPerson string
	ContactPhone  string
}

type Job struct {
	ID          uuid.UUID
	JobNumber   int64
	CustomerID  uuid.UUID
	JobType     JobType
	ServiceType ServiceType

	CargoDescription string
	Pickup           Stop
	Delivery         Stop

	RequestedPickupAt *time.Time

	// Residential
	RoomCount      *int
	VolumeCF       *int
	CrewSize       *int
	EstimatedItems map[string]int

	// Commercial
	PalletCount  *int
	WeightLbs    *int
	IsHazardous  bool
	BOLNumber    *string
	PricingModel *PricingModel

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerStats summarises a customer's jobs by current timeline status.
type CustomerStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Delivered int64 `json:"delivered"`
}

// PublicStats backs the unauthenticated homepage counters.
type PublicStats struct {
	TotalCustomers      int64 `json:"total_customers"`
	CompletedDeliveries int64 `json:"completed_deliveries"`
	ActiveOrders        int64 `json:"active_orders"`
}
