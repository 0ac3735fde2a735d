package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	phonePattern  = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	emailPattern  = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	regionPattern = regexp.MustCompile(`^[A-Z0-9\-]{2,10}$`)
)

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("user_role", validateUserRole)
	_ = validate.RegisterValidation("staff_role", validateStaffRole)
	_ = validate.RegisterValidation("phone", validatePhone)
	_ = validate.RegisterValidation("region_code", validateRegionCode)
	_ = validate.RegisterValidation("service_type", oneOf("RESIDENTIAL_MOVING", "OFFICE_RELOCATION", "PALLET_DELIVERY", "SMALL_DELIVERIES"))
	_ = validate.RegisterValidation("package_type", oneOf("small", "medium", "large", "pallet"))
	_ = validate.RegisterValidation("payment_method", oneOf("STRIPE", "PAYPAL", "BANK_TRANSFER", "CARD", "CHEQUE"))
}

// ValidateStruct runs struct tag validation including the custom tags
// registered in init.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "manager", "driver", "customer":
		return true
	}
	return false
}

// Accounts created by staff; customers sign up through the identity provider.
func validateStaffRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "manager", "driver":
		return true
	}
	return false
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(fl.Field().String())
	return phonePattern.MatchString(phone)
}

func validateRegionCode(fl validator.FieldLevel) bool {
	return regionPattern.MatchString(fl.Field().String())
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	return emailPattern.MatchString(email)
}
