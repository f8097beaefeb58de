package templates

import (
	"errors"
	"fmt"
)

var (
	// ErrTranslatorRequired indicates the service cannot operate without a translator.
	ErrTranslatorRequired = errors.New("templates: translator is required")
	// ErrRendererConfig indicates the template renderer was misconfigured.
	ErrRendererConfig = errors.New("templates: renderer configuration is incomplete")
	// ErrTypeNotFound is returned when no locale variant exists for a type code.
	ErrTypeNotFound = errors.New("templates: notification type not found")
	// ErrInvalidDefinition is returned when a type definition lacks a code or text.
	ErrInvalidDefinition = errors.New("templates: invalid type definition")
)

// RenderError reports which text field of a type failed to render.
type RenderError struct {
	Code  string
	Field string
	Err   error
}

func (e RenderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("templates: render %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("templates: render %s.%s: %v", e.Code, e.Field, e.Err)
}

func (e RenderError) Unwrap() error { return e.Err }
