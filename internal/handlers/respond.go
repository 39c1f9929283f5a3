// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chapterpress/internal/content"
)

// Error codes in the JSON error envelope.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeDuplicateSlug = "DUPLICATE_SLUG"
	codeHasDependents = "HAS_DEPENDENTS"
	codeConflict      = "CONFLICT"
	codeNotFound      = "NOT_FOUND"
	codeUnauthorized  = "UNAUTHORIZED"
	codeTooLarge      = "PAYLOAD_TOO_LARGE"
	codeInternal      = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode json response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: message, Fields: fields},
	})
}

// classify maps a service error onto an HTTP status and error code.
func classify(err error) (status int, code, message string, fields map[string]string) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, codeValidation, "validation failed", verr.Fields
	case errors.Is(err, content.ErrDuplicateSlug):
		return http.StatusBadRequest, codeDuplicateSlug, "slug already exists", map[string]string{"slug": "slug already exists"}
	case errors.Is(err, content.ErrHasDependents):
		return http.StatusConflict, codeHasDependents, "delete the children of this entry first", nil
	case errors.Is(err, content.ErrConflict):
		return http.StatusConflict, codeConflict, "conflict", nil
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, codeNotFound, "not found", nil
	case errors.Is(err, content.ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized, "authentication required", nil
	default:
		return http.StatusInternalServerError, codeInternal, "internal server error", nil
	}
}

// writeServiceError writes err using the JSON error envelope. Internal
// failures were already logged by the service and are not echoed back.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code, msg, fields := classify(err)
	writeError(w, status, code, msg, fields)
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large", nil)
			return false
		}
		writeError(w, http.StatusBadRequest, codeValidation, "request body must be a JSON object", nil)
		return false
	}
	return true
}
