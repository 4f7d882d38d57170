package validation

import (
	"encoding/json"
	"fmt"
	"net/http"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns the validator shared by all handlers.
func New() *validatorv10.Validate {
	return validatorv10.New()
}

// DecodeAndValidate binds the JSON body into out and runs struct
// validation. The caller turns a non-nil error into a 400.
func DecodeAndValidate(r *http.Request, out interface{}, v *validatorv10.Validate) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := v.Struct(out); err != nil {
		if ve, ok := err.(validatorv10.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("validation failed on %s (%s)", fe.StructNamespace(), fe.Tag())
		}
		return err
	}
	return nil
}
