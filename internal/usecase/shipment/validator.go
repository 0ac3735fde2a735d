package shipment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"logipro/internal/domain/fleet"
	appErrors "logipro/pkg/errors"
)

// AllowedImageTypes are the accepted proof-of-delivery formats.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ValidatedImage is a proof-of-delivery upload that passed ValidateProofOfDelivery.
type ValidatedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ValidateProofOfDelivery checks the declared type, the sniffed type and
// the size of an upload. The declared size is not trusted; at most
// maxBytes+1 bytes are read.
func ValidateProofOfDelivery(upload *ImageUpload, maxBytes int64) (*ValidatedImage, error) {
	if upload == nil || upload.Reader == nil {
		return nil, appErrors.Validation("proof_of_delivery_image is required", nil)
	}
	if upload.Size > maxBytes {
		return nil, appErrors.Validation(fmt.Sprintf("Image must be at most %d bytes", maxBytes), nil)
	}

	declared, _, err := mime.ParseMediaType(upload.ContentType)
	if err != nil || !isAllowedImage(declared) {
		return nil, appErrors.Validation("Image must be JPEG, PNG or GIF", err)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, maxBytes+1))
	if err != nil {
		return nil, appErrors.Validation("Could not read image", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, appErrors.Validation(fmt.Sprintf("Image must be at most %d bytes", maxBytes), nil)
	}

	sniffed := mimetype.Detect(data)
	if !isAllowedImage(sniffed.String()) {
		return nil, appErrors.Validation("Image content is not JPEG, PNG or GIF", nil)
	}
	if !sniffed.Is(declared) {
		return nil, appErrors.Validation("Image content does not match its declared type", nil)
	}

	return &ValidatedImage{Data: data, ContentType: sniffed.String(), Extension: sniffed.Extension()}, nil
}

func (v *ValidatedImage) Reader() io.Reader {
	return bytes.NewReader(v.Data)
}

func isAllowedImage(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range AllowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// ValidateVehicle loads the vehicle and rejects one under maintenance.
func ValidateVehicle(ctx context.Context, vehicleRepo fleet.VehicleRepository, vehicleID uuid.UUID) (*fleet.Vehicle, error) {
	vehicle, err := vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == fleet.VehicleMaintenance {
		return nil, fleet.ErrVehicleUnavailable
	}
	return vehicle, nil
}

// ValidateTimeRange checks that an arrival is not before its departure.
func ValidateTimeRange(departure, arrival *time.Time) error {
	if departure == nil || arrival == nil {
		return nil
	}
	if arrival.Before(*departure) {
		return appErrors.Validation("Arrival time must be after departure time", nil)
	}
	return nil
}
