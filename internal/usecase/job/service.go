package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logipro/internal/authz"
	"logipro/internal/domain/fleet"
	"logipro/internal/domain/invoice"
	domainJob "logipro/internal/domain/job"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/tracking"
	"logipro/internal/domain/uow"
	domainUser "logipro/internal/domain/user"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

type Service struct {
	tx         uow.Manager
	jobRepo    domainJob.Repository
	shipRepo   shipment.Repository
	timeline   timeline.Repository
	driverRepo fleet.DriverRepository
	userRepo   domainUser.Repository
	publisher  tracking.Publisher
}

func NewService(
	tx uow.Manager,
	jobRepo domainJob.Repository,
	shipRepo shipment.Repository,
	timelineRepo timeline.Repository,
	driverRepo fleet.DriverRepository,
	userRepo domainUser.Repository,
	publisher tracking.Publisher,
) *Service {
	return &Service{
		tx:         tx,
		jobRepo:    jobRepo,
		shipRepo:   shipRepo,
		timeline:   timelineRepo,
		driverRepo: driverRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// CreateJob books a job and, in the same transaction, its pending shipment,
// draft invoice and ORDER_PLACED timeline entry.
func (s *Service) CreateJob(ctx context.Context, actor authz.Principal, req *CreateJobRequest) (*CreateJobResponse, error) {
	normalizeStop(&req.Pickup)
	normalizeStop(&req.Delivery)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	customerID, err := s.resolveCustomer(ctx, actor, req.CustomerID)
	if err != nil {
		return nil, err
	}

	j := &domainJob.Job{
		CustomerID:        customerID,
		JobType:           domainJob.JobType(req.JobType),
		ServiceType:       domainJob.ServiceType(req.ServiceType),
		CargoDescription:  utils.SanitizeText(req.CargoDescription),
		Pickup:            toStop(req.Pickup),
		Delivery:          toStop(req.Delivery),
		RequestedPickupAt: req.RequestedPickupAt,
		RoomCount:         req.RoomCount,
		VolumeCF:          req.VolumeCF,
		CrewSize:          req.CrewSize,
		EstimatedItems:    req.EstimatedItems,
		PalletCount:       req.PalletCount,
		WeightLbs:         req.WeightLbs,
		IsHazardous:       req.IsHazardous,
		BOLNumber:         utils.SanitizeOptional(req.BOLNumber),
		PricingModel:      toPricingModel(req.PricingModel),
	}

	var (
		sh    *shipment.Shipment
		inv   *invoice.Invoice
		entry *timeline.Entry
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		number, err := repos.Jobs.NextNumber(ctx)
		if err != nil {
			return err
		}
		j.JobNumber = number

		if err := repos.Jobs.Create(ctx, j); err != nil {
			return err
		}

		sh = &shipment.Shipment{JobID: j.ID, Status: shipment.StatusPending}
		if err := repos.Shipments.Create(ctx, sh); err != nil {
			return err
		}

		rule, err := repos.TaxRules.FindActive(ctx, j.Delivery.Region)
		if err != nil {
			return err
		}
		inv = invoice.Draft(j, rule, time.Now())
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			return err
		}

		createdBy := actor.UserID
		entry = &timeline.Entry{
			JobID:       j.ID,
			Status:      timeline.StatusOrderPlaced,
			Location:    j.Pickup.City,
			Description: fmt.Sprintf("Job #%d booked", j.JobNumber),
			CreatedBy:   &createdBy,
		}
		return repos.Timeline.Append(ctx, entry)
	})
	if err != nil {
		logger.Error("Job creation rolled back",
			zap.String("customer_id", customerID.String()),
			zap.String("event", "job_create_failed"),
			zap.Error(err),
		)
		return nil, asAppError(err, "failed to create job")
	}

	logger.Info("Job created",
		zap.String("job_id", j.ID.String()),
		zap.Int64("job_number", j.JobNumber),
		zap.String("created_by", actor.UserID.String()),
		zap.String("invoice_total", inv.TotalAmount.StringFixed(2)),
		zap.String("event", "job_created"),
	)
	s.publish(ctx, j, sh, entry)

	return &CreateJobResponse{JobResponse: ToJobResponse(j), ShipmentID: sh.ID, InvoiceID: inv.ID}, nil
}

// resolveCustomer forces customers to book for themselves and requires
// staff to name an existing customer.
func (s *Service) resolveCustomer(ctx context.Context, actor authz.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.Role == authz.RoleCustomer {
		return actor.UserID, nil
	}
	if !actor.IsStaff() {
		return uuid.Nil, appErrors.ErrInsufficientPermissions
	}
	if requested == nil || *requested == uuid.Nil {
		return uuid.Nil, domainJob.ErrCustomerMissing
	}

	customer, err := s.userRepo.GetByID(ctx, *requested)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return uuid.Nil, appErrors.Validation("customer_id does not reference a customer", nil)
		}
		return uuid.Nil, err
	}
	if customer.Role != authz.RoleCustomer {
		return uuid.Nil, appErrors.Validation("customer_id does not reference a customer", nil)
	}
	return customer.ID, nil
}

func (s *Service) ListJobs(ctx context.Context, actor authz.Principal, req *ListJobsRequest) (*utils.PagedData, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	filter := &domainJob.Filter{
		Status:   req.Status,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.ServiceType != nil {
		st := domainJob.ServiceType(*req.ServiceType)
		filter.ServiceType = &st
	}

	switch actor.Role {
	case authz.RoleAdmin, authz.RoleManager:
		filter.CustomerID = req.CustomerID
	case authz.RoleCustomer:
		filter.CustomerID = &actor.UserID
	case authz.RoleDriver:
		driver, err := s.driverProfile(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.DriverID = &driver.ID
	default:
		return nil, appErrors.ErrInsufficientPermissions
	}

	jobs, total, err := s.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = ToJobResponse(j)
	}
	page, pageSize := utils.PageOrDefault(req.Page, req.PageSize)
	return &utils.PagedData{Items: items, Meta: utils.NewPageMeta(page, pageSize, total)}, nil
}

func (s *Service) GetJob(ctx context.Context, actor authz.Principal, jobID uuid.UUID) (*JobDetailResponse, error) {
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	sh, err := s.shipRepo.GetByJobID(ctx, j.ID)
	if err != nil && !errors.Is(err, shipment.ErrShipmentNotFound) {
		return nil, err
	}

	visible, err := s.visibleTo(ctx, actor, j, sh)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Forbidden("You do not have access to this job")
	}

	entries, err := s.timeline.ListByJob(ctx, j.ID)
	if err != nil {
		return nil, err
	}

	resp := &JobDetailResponse{
		JobResponse: ToJobResponse(j),
		Shipment:    toShipmentSummary(sh),
		Timeline:    make([]*TimelineEntryResponse, len(entries)),
	}
	for i, e := range entries {
		resp.Timeline[i] = ToTimelineResponse(e)
		if e.IsCurrent {
			status := string(e.Status)
			resp.CurrentStatus = &status
		}
	}
	return resp, nil
}

// CanView is the ownership predicate used by the route policy for job reads.
func (s *Service) CanView(ctx context.Context, actor authz.Principal, resourceID string) (bool, error) {
	jobID, err := uuid.Parse(resourceID)
	if err != nil {
		return false, appErrors.Validation("Invalid job ID", err)
	}
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	sh, err := s.shipRepo.GetByJobID(ctx, j.ID)
	if err != nil && !errors.Is(err, shipment.ErrShipmentNotFound) {
		return false, err
	}
	return s.visibleTo(ctx, actor, j, sh)
}

func (s *Service) visibleTo(ctx context.Context, actor authz.Principal, j *domainJob.Job, sh *shipment.Shipment) (bool, error) {
	switch actor.Role {
	case authz.RoleAdmin, authz.RoleManager:
		return true, nil
	case authz.RoleCustomer:
		return j.CustomerID == actor.UserID, nil
	case authz.RoleDriver:
		if sh == nil {
			return false, nil
		}
		driver, err := s.driverRepo.GetByUserID(ctx, actor.UserID)
		if errors.Is(err, fleet.ErrDriverNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return sh.AssignedTo(driver.ID), nil
	}
	return false, nil
}

func (s *Service) UpdateJob(ctx context.Context, actor authz.Principal, jobID uuid.UUID, req *UpdateJobRequest) (*JobResponse, error) {
	if !actor.IsStaff() {
		return nil, appErrors.ErrInsufficientPermissions
	}
	if req.Pickup != nil {
		normalizeStop(req.Pickup)
	}
	if req.Delivery != nil {
		normalizeStop(req.Delivery)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if req.CargoDescription != nil {
		j.CargoDescription = utils.SanitizeText(*req.CargoDescription)
	}
	if req.Pickup != nil {
		j.Pickup = toStop(*req.Pickup)
	}
	if req.Delivery != nil {
		j.Delivery = toStop(*req.Delivery)
	}
	if req.RequestedPickupAt != nil {
		j.RequestedPickupAt = req.RequestedPickupAt
	}
	if req.RoomCount != nil {
		j.RoomCount = req.RoomCount
	}
	if req.VolumeCF != nil {
		j.VolumeCF = req.VolumeCF
	}
	if req.CrewSize != nil {
		j.CrewSize = req.CrewSize
	}
	if req.EstimatedItems != nil {
		j.EstimatedItems = req.EstimatedItems
	}
	if req.PalletCount != nil {
		j.PalletCount = req.PalletCount
	}
	if req.WeightLbs != nil {
		j.WeightLbs = req.WeightLbs
	}
	if req.IsHazardous != nil {
		j.IsHazardous = *req.IsHazardous
	}
	if req.BOLNumber != nil {
		j.BOLNumber = utils.SanitizeOptional(req.BOLNumber)
	}
	if req.PricingModel != nil {
		j.PricingModel = toPricingModel(req.PricingModel)
	}

	if err := s.jobRepo.Update(ctx, j); err != nil {
		return nil, err
	}

	logger.Info("Job updated",
		zap.String("job_id", j.ID.String()),
		zap.String("updated_by", actor.UserID.String()),
		zap.String("event", "job_updated"),
	)
	return ToJobResponse(j), nil
}

func (s *Service) CustomerJobStats(ctx context.Context, actor authz.Principal) (*domainJob.CustomerStats, error) {
	if actor.Role != authz.RoleCustomer {
		return nil, appErrors.ErrInsufficientPermissions
	}
	return s.jobRepo.CustomerStats(ctx, actor.UserID)
}

func (s *Service) driverProfile(ctx context.Context, actor authz.Principal) (*fleet.Driver, error) {
	driver, err := s.driverRepo.GetByUserID(ctx, actor.UserID)
	if errors.Is(err, fleet.ErrDriverNotFound) {
		return nil, fleet.ErrNoDriverProfile
	}
	return driver, err
}

func (s *Service) publish(ctx context.Context, j *domainJob.Job, sh *shipment.Shipment, entry *timeline.Entry) {
	event := tracking.StatusEvent{
		JobID:          j.ID,
		JobNumber:      j.JobNumber,
		ShipmentID:     sh.ID,
		ShipmentStatus: string(sh.Status),
		Status:         string(entry.Status),
		StatusLabel:    entry.Status.Label(),
		Location:       entry.Location,
		Description:    entry.Description,
		OccurredAt:     entry.Timestamp,
	}
	if err := s.publisher.PublishStatus(ctx, event); err != nil {
		logger.Warn("Failed to publish status event",
			zap.Int64("job_number", j.JobNumber),
			zap.String("status", event.Status),
			zap.Error(err),
		)
	}
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

func normalizeStop(s *StopRequest) {
	s.Region = utils.NormalizeRegion(s.Region)
	s.ContactPhone = phoneSeparators.Replace(utils.SanitizePhone(s.ContactPhone))
}

func toStop(s StopRequest) domainJob.Stop {
	return domainJob.Stop{
		Address:       utils.SanitizeString(s.Address),
		City:          utils.SanitizeString(s.City),
		Region:        s.Region,
		ContactPerson: utils.SanitizeString(s.ContactPerson),
		ContactPhone:  s.ContactPhone,
	}
}

func toPricingModel(v *string) *domainJob.PricingModel {
	if v == nil {
		return nil
	}
	pm := domainJob.PricingModel(*v)
	return &pm
}

// asAppError keeps coded errors for the client and wraps anything else as
// an internal failure.
func asAppError(err error, msg string) error {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
