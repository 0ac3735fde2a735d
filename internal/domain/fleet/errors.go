package fleet

import appErrors "logipro/pkg/errors"

var (
	ErrDriverNotFound     = appErrors.NotFound("Driver not found", nil)
	ErrVehicleNotFound    = appErrors.NotFound("Vehicle not found", nil)
	ErrDriverExists       = appErrors.Conflict("This user already has a driver profile", nil)
	ErrDuplicatePlate     = appErrors.Conflict("A vehicle with this license plate already exists", nil)
	ErrNoDriverProfile    = appErrors.Forbidden("A driver profile is required")
	ErrUserNotDriverRole  = appErrors.Validation("User must have the driver role", nil)
	ErrVehicleUnavailable = appErrors.Validation("Vehicle is under maintenance", nil)
)
