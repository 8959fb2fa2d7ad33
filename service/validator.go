package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Amount bounds accepted by the gateway, in the minor currency unit.
const (
	MinChargeAmount = 1000
	MaxChargeAmount = 999999999
)

// ChargeRequest is the inbound create-transaction payload.
type ChargeRequest struct {
	EnrollmentID uint         `json:"enrollment_id" validate:"required"`
	Amount       int64        `json:"amount" validate:"min=1000,max=999999999"`
	Discount     int64        `json:"discount" validate:"min=0"`
	Customer     Customer     `json:"customer"`
	Items        []ChargeItem `json:"items" validate:"min=1,dive"`
}

type Customer struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone"`
}

type ChargeItem struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"gt=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

var validate = newChargeValidator()

func newChargeValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so violations match the payload the
	// caller actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	// Cross-field rule: a discount may never exceed the charged amount.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(ChargeRequest)
		if req.Discount > req.Amount {
			sl.ReportError(req.Discount, "discount", "Discount", "lte_amount", "")
		}
	}, ChargeRequest{})

	return v
}

// ValidateCharge checks a create-transaction request and returns every
// violated constraint, not just the first, so the caller can report all
// problems at once. An empty slice means the request is valid.
func ValidateCharge(req *ChargeRequest) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, violationMessage(fe))
	}
	return violations
}

func violationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return field + " must not be empty"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email":
		return "customer email is not a valid email address"
	case "phone":
		return "customer phone is not a valid phone number"
	case "lte_amount":
		return "discount cannot exceed amount"
	}
	return field + " is invalid"
}
