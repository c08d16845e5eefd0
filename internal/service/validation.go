package service

import (
	"strings"
	"unicode"

	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

const maxIDLength = 255

// validateID enforces the well-formedness rules shared by tenant and group ids.
func validateID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewBadRequest(field+" is required", map[string]any{"field": field})
	}
	if len(value) > maxIDLength {
		return apperrors.NewBadRequest(field+" is too long", map[string]any{"field": field, "max": maxIDLength})
	}
	if value != strings.TrimSpace(value) || strings.IndexFunc(value, unicode.IsControl) >= 0 || strings.Contains(value, "/") {
		return apperrors.NewBadRequest(field+" contains invalid characters", map[string]any{"field": field})
	}
	return nil
}

func validateDescription(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewBadRequest(field+" is required", map[string]any{"field": field})
	}
	return nil
}

// pageLimit resolves the caller's limit: 0 selects def, values above max are capped.
func pageLimit(limit, def, max int) (int, error) {
	switch {
	case limit < 0:
		return 0, apperrors.NewBadRequest("limit must be positive", map[string]any{"limit": limit})
	case limit == 0:
		return def, nil
	case limit > max:
		return max, nil
	default:
		return limit, nil
	}
}
