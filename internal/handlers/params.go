package handlers

import (
	"net/http"
	"strconv"

	"bnbBack/internal/models"
)

// getParam returns a route parameter whether the router stored it with a leading colon
// (pat) or exposes it through PathValue.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	return r.PathValue(name)
}

// intParam parses a numeric route parameter. A missing or malformed value is a
// validation error on that parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := getParam(r, name)
	if raw == "" {
		return 0, models.NewValidationError(name, "missing %s", name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, models.NewValidationError(name, "invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt reads an optional positive integer query value, returning 0 when absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name, "invalid %s %q", name, raw)
	}
	return n, nil
}
