package fleet

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logipro/internal/authz"
	domainFleet "logipro/internal/domain/fleet"
	domainUser "logipro/internal/domain/user"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

type Service struct {
	driverRepo  domainFleet.DriverRepository
	vehicleRepo domainFleet.VehicleRepository
	userRepo    domainUser.Repository
}

func NewService(driverRepo domainFleet.DriverRepository, vehicleRepo domainFleet.VehicleRepository, userRepo domainUser.Repository) *Service {
	return &Service{driverRepo: driverRepo, vehicleRepo: vehicleRepo, userRepo: userRepo}
}

// CreateDriver attaches a driver profile to an existing driver-role user.
func (s *Service) CreateDriver(ctx context.Context, req *CreateDriverRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.Validation("user_id does not reference a user", err)
		}
		return nil, err
	}
	if u.Role != authz.RoleDriver {
		return nil, domainFleet.ErrUserNotDriverRole
	}

	driver := &domainFleet.Driver{
		UserID:        u.ID,
		LicenseNumber: utils.SanitizeString(req.LicenseNumber),
		PhoneNumber:   utils.SanitizePhone(req.PhoneNumber),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	driver.FullName = u.FullName

	logger.Info("Driver profile created",
		zap.String("driver_id", driver.ID.String()),
		zap.String("user_id", u.ID.String()),
		zap.String("event", "driver_created"),
	)
	return ToDriverResponse(driver), nil
}

func (s *Service) GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverResponse, error) {
	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return ToDriverResponse(d), nil
}

func (s *Service) ListDrivers(ctx context.Context) ([]*DriverResponse, error) {
	drivers, err := s.driverRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*DriverResponse, len(drivers))
	for i, d := range drivers {
		items[i] = ToDriverResponse(d)
	}
	return items, nil
}

func (s *Service) UpdateDriver(ctx context.Context, driverID uuid.UUID, req *UpdateDriverRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if req.LicenseNumber != nil {
		d.LicenseNumber = utils.SanitizeString(*req.LicenseNumber)
	}
	if req.PhoneNumber != nil {
		d.PhoneNumber = utils.SanitizePhone(*req.PhoneNumber)
	}

	if err := s.driverRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return ToDriverResponse(d), nil
}

// DeleteDriver removes the profile; shipments keep their history with no driver.
func (s *Service) DeleteDriver(ctx context.Context, driverID uuid.UUID) error {
	if err := s.driverRepo.Delete(ctx, driverID); err != nil {
		return err
	}
	logger.Info("Driver profile deleted", zap.String("driver_id", driverID.String()), zap.String("event", "driver_deleted"))
	return nil
}

func (s *Service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	v := &domainFleet.Vehicle{
		LicensePlate: normalizePlate(req.LicensePlate),
		Make:         utils.SanitizeString(req.Make),
		Model:        utils.SanitizeString(req.Model),
		Year:         req.Year,
		CapacityKg:   req.CapacityKg,
		Status:       domainFleet.VehicleAvailable,
	}
	if req.Status != nil {
		v.Status = domainFleet.VehicleStatus(*req.Status)
	}

	if err := s.vehicleRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	return ToVehicleResponse(v), nil
}

func (s *Service) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*VehicleResponse, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return ToVehicleResponse(v), nil
}

func (s *Service) ListVehicles(ctx context.Context, req *ListVehiclesRequest) ([]*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	var status *domainFleet.VehicleStatus
	if req.Status != nil {
		st := domainFleet.VehicleStatus(*req.Status)
		status = &st
	}

	vehicles, err := s.vehicleRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	items := make([]*VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		items[i] = ToVehicleResponse(v)
	}
	return items, nil
}

func (s *Service) UpdateVehicle(ctx context.Context, vehicleID uuid.UUID, req *UpdateVehicleRequest) (*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if req.LicensePlate != nil {
		v.LicensePlate = normalizePlate(*req.LicensePlate)
	}
	if req.Make != nil {
		v.Make = utils.SanitizeString(*req.Make)
	}
	if req.Model != nil {
		v.Model = utils.SanitizeString(*req.Model)
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.CapacityKg != nil {
		v.CapacityKg = *req.CapacityKg
	}
	if req.Status != nil {
		v.Status = domainFleet.VehicleStatus(*req.Status)
	}

	if err := s.vehicleRepo.Update(ctx, v); err != nil {
		return nil, err
	}
	return ToVehicleResponse(v), nil
}

func (s *Service) DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	return s.vehicleRepo.Delete(ctx, vehicleID)
}

func normalizePlate(plate string) string {
	return strings.ToUpper(utils.SanitizeString(plate))
}
