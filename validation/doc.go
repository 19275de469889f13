// Package validation provides input validation for API handlers.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// recommended for request payloads.
//
// # Struct Tag Validation
//
//	type EnrollRequest struct {
//	    Username string `validate:"required,max=64"`
//	    Language string `validate:"required,oneof=en hi ta"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("username", username).OneOf("language", lang, codes)
//	err := v.Validate()
package validation
