package address

import appErrors "logipro/pkg/errors"

var ErrAddressNotFound = appErrors.NotFound("Address not found", nil)
