package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a create collides with an existing key.
	ErrDuplicate = errors.New("record already exists")
	// ErrUnavailable wraps failures to reach the backing store.
	ErrUnavailable = errors.New("store unavailable")
)

const pgUniqueViolation = "23505"

// pgError normalizes pgx failures onto the repository sentinels.
func pgError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	if isConnectivity(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivity(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ToFault converts a repository error into the caller-facing fault for
// resource ("tenant", "group", "token", "user").
func ToFault(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, ErrDuplicate):
		return apperrors.NewConflict(resource+"Conflict", fmt.Sprintf("%s already exists", resource), details)
	case errors.Is(err, ErrUnavailable):
		return apperrors.NewServiceUnavailable(err)
	default:
		return apperrors.MapError(err)
	}
}
