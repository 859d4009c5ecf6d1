// Package validation validates configuration structs using struct tags
// backed by go-playground/validator.
//
//	type Config struct {
//	    BaseURL string        `mapstructure:"base_url" validate:"omitempty,abs_url"`
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as a VALIDATION_FAILED *errors.AppError whose
// "fields" detail lists each offending field.
package validation
