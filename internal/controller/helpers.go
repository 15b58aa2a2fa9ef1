package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	domainErrors "github.com/cassiomorais/gozon/internal/domain/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// problem is the HTTP rendition of a use case error.
type problem struct {
	status  int
	code    string
	message string // overrides err.Error() when set
}

var (
	notFound = problem{status: http.StatusNotFound, code: "not_found"}
	badInput = problem{status: http.StatusBadRequest, code: "validation_error"}
	internal = problem{status: http.StatusInternalServerError, code: "internal_error", message: "internal server error"}
)

// sentinels is checked in order with errors.Is, so a wrapped
// ErrAccountNotFound still maps to 404.
var sentinels = []struct {
	err error
	problem
}{
	{domainErrors.ErrOrderNotFound, notFound},
	{domainErrors.ErrAccountNotFound, notFound},
	{domainErrors.ErrInvalidPrice, badInput},
	{domainErrors.ErrInvalidAmount, badInput},
	{domainErrors.ErrAccountAlreadyExists, problem{status: http.StatusConflict, code: "already_exists"}},
	{domainErrors.ErrInvalidStateTransition, problem{status: http.StatusConflict, code: "invalid_state_transition"}},
	{domainErrors.ErrOptimisticLockFailed, problem{
		status: http.StatusConflict, code: "conflict",
		message: "concurrent modification, please retry",
	}},
}

func classify(err error) (problem, bool) {
	var ve *domainErrors.ValidationError
	if errors.As(err, &ve) {
		return badInput, true
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.problem, true
		}
	}
	var de *domainErrors.DomainError
	if errors.As(err, &de) {
		return problem{status: http.StatusUnprocessableEntity, code: de.Code}, true
	}
	return internal, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	p, known := classify(err)
	if !known {
		log.Error().Err(err).Msg("unhandled error in handler")
	}
	msg := p.message
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, p.status, ErrorResponse{Error: msg, Code: p.code})
}

// decodeAndValidate rejects unknown fields so a misspelled key is a 400
// instead of a silently zero value.
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return domainErrors.NewValidationError("body", err.Error())
	}
	first := fields[0]
	return domainErrors.NewValidationError(first.Field(), "failed on '"+first.Tag()+"'")
}

// requireQuery reads a mandatory query parameter.
func requireQuery(r *http.Request, name string) (string, error) {
	if v := r.URL.Query().Get(name); v != "" {
		return v, nil
	}
	return "", domainErrors.NewValidationError(name, "query parameter is required")
}
