package shipment

import appErrors "logipro/pkg/errors"

var (
	ErrShipmentNotFound = appErrors.NotFound("Shipment not found", nil)
	ErrNotAssignedToYou = appErrors.Forbidden("This shipment is not assigned to you")
	ErrDriverRequired   = appErrors.Validation("A driver or vehicle is required", nil)
)
