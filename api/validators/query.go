package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
)

// Query parameters are optional. A missing or blank value yields the
// fallback and never an error.

type queryEnum interface {
	~string
	IsValid() bool
}

// ParseQueryInt reads key as an integer in [lo, hi], or def when absent.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, queryError(key, "must be a whole number")
	case n < lo || n > hi:
		return 0, queryError(key, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return n, nil
}

// ParseQueryBool accepts the strconv.ParseBool spellings.
func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, queryError(key, "must be true or false")
	}
	return v, nil
}

// ParseQueryEnum reads a filter value that must be one of the enum's members.
func ParseQueryEnum[E queryEnum](r *http.Request, key string) (E, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return "", nil
	}
	v := E(raw)
	if !v.IsValid() {
		return "", queryError(key, "is not a recognised value")
	}
	return v, nil
}

func queryValue(r *http.Request, key string) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	return raw, raw != ""
}

func queryError(key, problem string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").WithDetails(map[string]string{key: problem})
}
