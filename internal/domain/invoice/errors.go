package invoice

import appErrors "logipro/pkg/errors"

var (
	ErrInvoiceNotFound  = appErrors.NotFound("Invoice not found", nil)
	ErrTaxRuleNotFound  = appErrors.NotFound("Tax rule not found", nil)
	ErrDuplicateRegion  = appErrors.Conflict("A tax rule for this region already exists", nil)
	ErrInvalidPayMethod = appErrors.Validation("Unsupported payment method", nil)
)
