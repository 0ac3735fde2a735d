package shipment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logipro/internal/authz"
	"logipro/internal/domain/fleet"
	domainJob "logipro/internal/domain/job"
	domainShipment "logipro/internal/domain/shipment"
	"logipro/internal/domain/storage"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/tracking"
	"logipro/internal/domain/uow"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

// Service runs the shipment workflow. Every status change happens under a
// row lock on the shipment and appends the matching timeline entry in the
// same transaction.
type Service struct {
	tx           uow.Manager
	shipmentRepo domainShipment.Repository
	driverRepo   fleet.DriverRepository
	vehicleRepo  fleet.VehicleRepository
	blobs        storage.BlobStore
	publisher    tracking.Publisher
	podMaxBytes  int64
}

func NewService(
	tx uow.Manager,
	shipmentRepo domainShipment.Repository,
	driverRepo fleet.DriverRepository,
	vehicleRepo fleet.VehicleRepository,
	blobs storage.BlobStore,
	publisher tracking.Publisher,
	podMaxBytes int64,
) *Service {
	return &Service{
		tx:           tx,
		shipmentRepo: shipmentRepo,
		driverRepo:   driverRepo,
		vehicleRepo:  vehicleRepo,
		blobs:        blobs,
		publisher:    publisher,
		podMaxBytes:  podMaxBytes,
	}
}

// change is what a workflow step did to a locked shipment.
type change struct {
	entry *timeline.Entry
}

type mutation func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error)

// apply locks the shipment, checks driver ownership when driver is set,
// runs fn and persists the result together with any timeline entry.
func (s *Service) apply(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, driver *fleet.Driver, fn mutation) (*domainShipment.Shipment, error) {
	var (
		sh    *domainShipment.Shipment
		j     *domainJob.Job
		entry *timeline.Entry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		sh, err = repos.Shipments.GetForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if driver != nil && !sh.AssignedTo(driver.ID) {
			return domainShipment.ErrNotAssignedToYou
		}
		j, err = repos.Jobs.GetByID(ctx, sh.JobID)
		if err != nil {
			return err
		}

		c, err := fn(sh, j)
		if err != nil {
			return err
		}
		if err := repos.Shipments.Update(ctx, sh); err != nil {
			return err
		}

		if c.entry == nil {
			return nil
		}
		entry = c.entry
		entry.JobID = sh.JobID
		createdBy := actor.UserID
		entry.CreatedBy = &createdBy
		return repos.Timeline.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		s.publish(ctx, j, sh, entry)
	}
	return sh, nil
}

func (s *Service) publish(ctx context.Context, j *domainJob.Job, sh *domainShipment.Shipment, entry *timeline.Entry) {
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
			zap.String("shipment_id", sh.ID.String()),
			zap.String("status", event.Status),
			zap.Error(err),
		)
	}
}

// Assign sets the driver and/or vehicle of a shipment. Naming a driver
// moves the shipment to ASSIGNED.
func (s *Service) Assign(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, req *AssignRequest) (*ShipmentResponse, error) {
	if !actor.IsStaff() {
		return nil, appErrors.ErrInsufficientPermissions
	}
	if req.DriverID == nil && req.VehicleID == nil {
		return nil, domainShipment.ErrDriverRequired
	}
	if err := ValidateTimeRange(req.EstimatedDeparture, req.EstimatedArrival); err != nil {
		return nil, err
	}

	var driver *fleet.Driver
	if req.DriverID != nil {
		var err error
		if driver, err = s.driverRepo.GetByID(ctx, *req.DriverID); err != nil {
			return nil, err
		}
	}
	if req.VehicleID != nil {
		if _, err := ValidateVehicle(ctx, s.vehicleRepo, *req.VehicleID); err != nil {
			return nil, err
		}
	}

	sh, err := s.apply(ctx, actor, shipmentID, nil, func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error) {
		var c change
		if driver != nil {
			if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusAssigned); err != nil {
				return c, err
			}
			sh.DriverID = &driver.ID
			sh.Status = domainShipment.StatusAssigned
			c.entry = &timeline.Entry{
				Status:      timeline.StatusDriverAssigned,
				Location:    j.Pickup.City,
				Description: fmt.Sprintf("Assigned to %s", driver.FullName),
			}
		} else if sh.Status.IsTerminal() {
			return c, appErrors.InvalidTransition(string(sh.Status), string(sh.Status))
		}

		if req.VehicleID != nil {
			sh.VehicleID = req.VehicleID
		}
		if req.EstimatedDeparture != nil {
			sh.EstimatedDeparture = req.EstimatedDeparture
		}
		if req.EstimatedArrival != nil {
			sh.EstimatedArrival = req.EstimatedArrival
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Shipment assigned",
		zap.String("shipment_id", sh.ID.String()),
		zap.Any("driver_id", sh.DriverID),
		zap.Any("vehicle_id", sh.VehicleID),
		zap.String("assigned_by", actor.UserID.String()),
		zap.String("event", "shipment_assigned"),
	)
	return ToShipmentResponse(sh), nil
}

func (s *Service) StartTrip(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	driver, err := s.driverProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	sh, err := s.apply(ctx, actor, shipmentID, driver, func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error) {
		if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusInTransit); err != nil {
			return change{}, err
		}
		now := time.Now()
		sh.Status = domainShipment.StatusInTransit
		sh.ActualDeparture = &now
		return change{entry: &timeline.Entry{
			Status:      timeline.StatusInTransit,
			Location:    j.Pickup.City,
			Description: "Trip started",
		}}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Trip started",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("driver_id", driver.ID.String()),
		zap.String("event", "trip_started"),
	)
	return ToShipmentResponse(sh), nil
}

// MarkDelivered completes an in-transit shipment. pod is optional; when
// given it is validated and stored before the status changes.
func (s *Service) MarkDelivered(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, req *MarkDeliveredRequest, pod *ImageUpload) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	driver, err := s.driverProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	var podURL *string
	if pod != nil {
		img, err := ValidateProofOfDelivery(pod, s.podMaxBytes)
		if err != nil {
			return nil, err
		}
		if err := s.precheck(ctx, shipmentID, driver, domainShipment.StatusInTransit); err != nil {
			return nil, err
		}
		url, err := s.storeImage(ctx, shipmentID, img)
		if err != nil {
			return nil, err
		}
		podURL = &url
	}

	sh, err := s.apply(ctx, actor, shipmentID, driver, func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error) {
		if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusDelivered); err != nil {
			return change{}, err
		}
		deliver(sh, podURL)
		if req.SignatureName != nil {
			sh.SignatureName = utils.SanitizeOptional(req.SignatureName)
		}
		return change{entry: deliveredEntry(j)}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Shipment delivered",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("driver_id", driver.ID.String()),
		zap.Bool("with_pod", podURL != nil),
		zap.String("event", "shipment_delivered"),
	)
	return ToShipmentResponse(sh), nil
}

// UploadProofOfDelivery stores a POD image. On an in-transit shipment the
// upload also completes delivery; on a delivered one it replaces the image.
func (s *Service) UploadProofOfDelivery(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, pod *ImageUpload) (*ShipmentResponse, error) {
	driver, err := s.driverProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	// A bad image is rejected before the shipment state is looked at.
	img, err := ValidateProofOfDelivery(pod, s.podMaxBytes)
	if err != nil {
		return nil, err
	}
	if err := s.precheck(ctx, shipmentID, driver, domainShipment.StatusInTransit, domainShipment.StatusDelivered); err != nil {
		return nil, err
	}

	url, err := s.storeImage(ctx, shipmentID, img)
	if err != nil {
		return nil, err
	}

	sh, err := s.apply(ctx, actor, shipmentID, driver, func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error) {
		switch sh.Status {
		case domainShipment.StatusInTransit:
			deliver(sh, &url)
			return change{entry: deliveredEntry(j)}, nil
		case domainShipment.StatusDelivered:
			sh.ProofOfDeliveryURL = &url
			return change{}, nil
		default:
			return change{}, appErrors.InvalidTransition(string(sh.Status), string(domainShipment.StatusDelivered))
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Proof of delivery uploaded",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("url", url),
		zap.String("event", "pod_uploaded"),
	)
	return ToShipmentResponse(sh), nil
}

func (s *Service) MarkFailed(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, req *MarkFailedRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	driver, err := s.driverProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	reason := utils.SanitizeText(req.Reason)
	sh, err := s.apply(ctx, actor, shipmentID, driver, func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error) {
		if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusFailed); err != nil {
			return change{}, err
		}
		sh.Status = domainShipment.StatusFailed
		sh.FailureReason = &reason
		return change{entry: &timeline.Entry{
			Status:      timeline.StatusFailed,
			Location:    j.Delivery.City,
			Description: reason,
		}}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Warn("Delivery failed",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("reason", reason),
		zap.String("event", "shipment_failed"),
	)
	return ToShipmentResponse(sh), nil
}

// RecordCheckpoint adds a driver-reported timeline entry to an in-transit
// shipment without changing its status.
func (s *Service) RecordCheckpoint(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, req *CheckpointRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	status := timeline.Status(req.Status)
	if !status.IsCheckpoint() {
		return nil, appErrors.Validation("status must be PICKED_UP, IN_TRANSIT or OUT_FOR_DELIVERY", nil)
	}
	driver, err := s.driverProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	sh, err := s.apply(ctx, actor, shipmentID, driver, func(sh *domainShipment.Shipment, j *domainJob.Job) (change, error) {
		if sh.Status != domainShipment.StatusInTransit {
			return change{}, appErrors.InvalidTransition(string(sh.Status), req.Status)
		}
		return change{entry: &timeline.Entry{
			Status:      status,
			Location:    utils.SanitizeString(req.Location),
			Description: utils.SanitizeText(req.Description),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(sh), nil
}

// Update edits schedule and signature fields. Staff may edit all of them;
// the assigned driver only the estimated arrival and signature name.
// Status is never written here.
func (s *Service) Update(ctx context.Context, actor authz.Principal, shipmentID uuid.UUID, req *UpdateShipmentRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	if req.Status != nil {
		logger.Debug("Ignoring status in shipment update",
			zap.String("shipment_id", shipmentID.String()),
			zap.String("status", *req.Status),
		)
	}

	var driver *fleet.Driver
	switch {
	case actor.IsStaff():
		if req.VehicleID != nil {
			if _, err := ValidateVehicle(ctx, s.vehicleRepo, *req.VehicleID); err != nil {
				return nil, err
			}
		}
	case actor.Role == authz.RoleDriver:
		var err error
		if driver, err = s.driverProfile(ctx, actor); err != nil {
			return nil, err
		}
	default:
		return nil, appErrors.ErrInsufficientPermissions
	}

	sh, err := s.apply(ctx, actor, shipmentID, driver, func(sh *domainShipment.Shipment, _ *domainJob.Job) (change, error) {
		if req.EstimatedArrival != nil {
			sh.EstimatedArrival = req.EstimatedArrival
		}
		if req.SignatureName != nil {
			sh.SignatureName = utils.SanitizeOptional(req.SignatureName)
		}
		if driver == nil {
			if req.VehicleID != nil {
				sh.VehicleID = req.VehicleID
			}
			if req.EstimatedDeparture != nil {
				sh.EstimatedDeparture = req.EstimatedDeparture
			}
			if req.ActualDeparture != nil {
				sh.ActualDeparture = req.ActualDeparture
			}
			if req.ActualArrival != nil {
				sh.ActualArrival = req.ActualArrival
			}
		}
		if err := ValidateTimeRange(sh.EstimatedDeparture, sh.EstimatedArrival); err != nil {
			return change{}, err
		}
		return change{}, ValidateTimeRange(sh.ActualDeparture, sh.ActualArrival)
	})
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(sh), nil
}

func (s *Service) Get(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(sh), nil
}

func (s *Service) List(ctx context.Context, req *ListShipmentsRequest) (*utils.PagedData, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	filter := &domainShipment.Filter{
		DriverID: req.DriverID,
		JobID:    req.JobID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Status != nil {
		status := domainShipment.Status(*req.Status)
		filter.Status = &status
	}

	shipments, total, err := s.shipmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*ShipmentResponse, len(shipments))
	for i, sh := range shipments {
		items[i] = ToShipmentResponse(sh)
	}
	page, pageSize := utils.PageOrDefault(req.Page, req.PageSize)
	return &utils.PagedData{Items: items, Meta: utils.NewPageMeta(page, pageSize, total)}, nil
}

// MyAssignments lists the caller's open shipments, earliest pickup first.
func (s *Service) MyAssignments(ctx context.Context, actor authz.Principal) ([]*AssignmentResponse, error) {
	driver, err := s.driverProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	assignments, err := s.shipmentRepo.ListAssignments(ctx, driver.ID)
	if err != nil {
		return nil, err
	}

	items := make([]*AssignmentResponse, len(assignments))
	for i, a := range assignments {
		items[i] = toAssignmentResponse(a)
	}
	return items, nil
}

// IsAssignedDriver is the ownership predicate for driver-only routes.
func (s *Service) IsAssignedDriver(ctx context.Context, actor authz.Principal, resourceID string) (bool, error) {
	shipmentID, err := uuid.Parse(resourceID)
	if err != nil {
		return false, appErrors.Validation("Invalid shipment ID", err)
	}
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return false, err
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

func (s *Service) driverProfile(ctx context.Context, actor authz.Principal) (*fleet.Driver, error) {
	if actor.Role != authz.RoleDriver {
		return nil, appErrors.ErrInsufficientPermissions
	}
	driver, err := s.driverRepo.GetByUserID(ctx, actor.UserID)
	if errors.Is(err, fleet.ErrDriverNotFound) {
		return nil, fleet.ErrNoDriverProfile
	}
	return driver, err
}

// precheck rejects uploads from the wrong driver or for the wrong status
// before any bytes are stored. apply repeats both checks under the lock.
func (s *Service) precheck(ctx context.Context, shipmentID uuid.UUID, driver *fleet.Driver, allowed ...domainShipment.Status) error {
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if !sh.AssignedTo(driver.ID) {
		return domainShipment.ErrNotAssignedToYou
	}
	for _, st := range allowed {
		if sh.Status == st {
			return nil
		}
	}
	return appErrors.InvalidTransition(string(sh.Status), string(domainShipment.StatusDelivered))
}

func (s *Service) storeImage(ctx context.Context, shipmentID uuid.UUID, img *ValidatedImage) (string, error) {
	key := fmt.Sprintf("pod/%s/%d%s", shipmentID, time.Now().UnixNano(), img.Extension)
	url, err := s.blobs.Put(ctx, key, img.ContentType, img.Reader())
	if err != nil {
		return "", fmt.Errorf("failed to store proof of delivery: %w", err)
	}
	return url, nil
}

func deliver(sh *domainShipment.Shipment, podURL *string) {
	now := time.Now()
	sh.Status = domainShipment.StatusDelivered
	sh.ActualArrival = &now
	if podURL != nil {
		sh.ProofOfDeliveryURL = podURL
	}
}

func deliveredEntry(j *domainJob.Job) *timeline.Entry {
	return &timeline.Entry{
		Status:      timeline.StatusDelivered,
		Location:    j.Delivery.City,
		Description: "Delivered",
	}
}
