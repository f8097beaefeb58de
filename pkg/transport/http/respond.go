package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	goerrors "github.com/goliatone/go-errors"
)

// ErrorEnvelope is the JSON body of every error response.
type ErrorEnvelope struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Category  string         `json:"category,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// validate is shared by every handler. Custom registrations belong in init.
var validate = validator.New()

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid payload")
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return goerrors.New(strings.Join(msgs, "; "), goerrors.CategoryValidation).
			WithTextCode("INVALID_PAYLOAD")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}

// statusFor maps go-errors categories to HTTP status codes.
func statusFor(err error) int {
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) {
		return http.StatusInternalServerError
	}
	switch typed.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	env := ErrorEnvelope{Error: err.Error(), RequestID: requestID(r)}
	var typed *goerrors.Error
	if goerrors.As(err, &typed) {
		env.Error = typed.Message
		env.Code = typed.TextCode
		env.Category = string(typed.Category)
		if status != http.StatusInternalServerError {
			env.Metadata = typed.Metadata
		}
	}
	if status == http.StatusInternalServerError {
		env.Error = http.StatusText(status)
	}
	writeJSON(w, status, env)
}
