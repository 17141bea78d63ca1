package http

import (
	"strings"

	"github.com/google/uuid"

	commonerrors "github.com/movstream/backend/internal/common/errors"
)

func ValidateUUID(s string) error {
	if s == "" {
		return commonerrors.ErrEmptyUUID
	}
	_, err := uuid.Parse(s)
	return err
}

// PathSegment returns the path component after prefix and before any further
// slash, e.g. PathSegment("/api/admin/users/42/status", "/api/admin/users/")
// yields "42".
func PathSegment(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	remaining := strings.TrimPrefix(path, prefix)
	parts := strings.Split(remaining, "/")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0], true
	}
	return "", false
}
