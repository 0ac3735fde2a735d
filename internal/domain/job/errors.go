package job

import appErrors "logipro/pkg/errors"

var (
	ErrJobNotFound     = appErrors.NotFound("Job not found", nil)
	ErrDuplicateBOL    = appErrors.Conflict("A job with this BOL number already exists", nil)
	ErrDuplicateNumber = appErrors.Conflict("Job number already in use", nil)
	ErrCustomerMissing = appErrors.Validation("customer_id is required when staff create a job", nil)
)
