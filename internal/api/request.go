package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tallerhub/taller-status/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v any) *core.APIError {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return core.NewInvalidRequestError("Failed to read request body.", nil)
	}
	if len(body) == 0 {
		return core.NewInvalidRequestError("Request body is required.", nil)
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return core.NewValidationError("Field '"+typeErr.Field+"' has the wrong type.", map[string]any{
				"field":    typeErr.Field,
				"expected": typeErr.Type.String(),
				"received": typeErr.Value,
			})
		}
		return core.NewInvalidRequestError("Invalid JSON in request body.", nil)
	}
	return nil
}

// pathInt parses an integer URL parameter.
func pathInt(raw, name string) (int, *core.APIError) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewInvalidRequestError("The '"+name+"' path parameter must be an integer.", map[string]any{
			"field":    name,
			"received": raw,
		})
	}
	return n, nil
}

// pathEntityID reads the {id} URL parameter. Ids that could never have been
// issued are refused before they reach the store.
func pathEntityID(r *http.Request) (string, *core.APIError) {
	id := chi.URLParam(r, "id")
	if !core.IsValidEntityID(id) {
		return "", core.NewInvalidRequestError("The 'id' path parameter must be a UUIDv7.", map[string]any{
			"field":    "id",
			"received": id,
		})
	}
	return id, nil
}

// statusFilter reads the ?status= query parameter.
func statusFilter(r *http.Request) (core.StatusFilter, *core.APIError) {
	raw := r.URL.Query().Get("status")
	f, err := core.ParseStatusFilter(raw)
	if err != nil {
		return core.AnyStatus(), core.NewInvalidRequestError("The 'status' filter must be 'all' or a status ID.", map[string]any{
			"field":    "status",
			"received": raw,
		})
	}
	return f, nil
}
