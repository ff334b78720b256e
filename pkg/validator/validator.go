package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SheetDateLayout is the day-first date used in schedule sheet labels.
const SheetDateLayout = "02/01/2006"

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("sheetdate", validateSheetDate)
	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "url":
				errors[field] = field + " must be a valid URL"
			case "min":
				errors[field] = field + " must be at least " + e.Param()
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "oneof":
				errors[field] = field + " must be one of " + e.Param()
			case "sheetdate":
				errors[field] = field + " must be a date in DD/MM/YYYY format"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func validateSheetDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(SheetDateLayout, fl.Field().String())
	return err == nil
}
