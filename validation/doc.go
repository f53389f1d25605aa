// Package validation checks request input and reports failures as
// INVALID_INPUT AppErrors that list every failing field.
//
// Request bodies use struct tags:
//
//	type GenerateRequest struct {
//	    Prompt string `json:"prompt" validate:"required,max=2000"`
//	}
//	if err := validation.Struct(req); err != nil { ... }
//
// Query parameters use the programmatic validator:
//
//	v := validation.New()
//	v.Required("place", place).Range("days", days, 1, 30)
//	if err := v.Err(); err != nil { ... }
package validation
