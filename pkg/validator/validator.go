// Package validator wraps go-playground/validator with domain validations.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		// Format validation errors
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

var profileNameRe = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ._-]{0,29}$`)

func (v *Validator) registerCustomValidations() {
	// profile_name: 1-30 chars, letters/digits/space and light punctuation,
	// must not start with punctuation.
	_ = v.validate.RegisterValidation("profile_name", func(fl validator.FieldLevel) bool {
		return profileNameRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	// video_quality: one of the known rendition tiers.
	_ = v.validate.RegisterValidation("video_quality", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "sd", "hd", "uhd":
			return true
		}
		return false
	})

	// plan_tier: one of the known subscription tiers.
	_ = v.validate.RegisterValidation("plan_tier", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "basic", "premium", "ultra":
			return true
		}
		return false
	})
}
