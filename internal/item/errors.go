package item

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation means the item did not pass its validation pipeline;
	// inspect Item.Errors() for the field-level messages.
	ErrValidation = errors.New("item validation failed")
	// ErrConflict indicates a uniqueness or concurrency conflict.
	ErrConflict = errors.New("item conflict")
	// ErrRetryable indicates a transient failure (serialization, deadlock).
	ErrRetryable = errors.New("item retryable")
	// ErrNotFound indicates a missing row.
	ErrNotFound = errors.New("item not found")
	// ErrNoAttribute means the resolved schema declares no such accessor.
	ErrNoAttribute = errors.New("no such attribute")
)

// ValidationErrors accumulates field-level messages during a save attempt.
// It mirrors the "inspect the error collection, don't catch exceptions"
// contract: a failed save never raises for ordinary validation failures.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

func (v ValidationErrors) Any() bool {
	return len(v) > 0
}

func (v ValidationErrors) On(field string) []string {
	return v[field]
}

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(v))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(v[f], "; "))
	}
	return strings.Join(parts, "; ")
}

// MapError translates infrastructure failures into the engine's error
// taxonomy. Postgres error codes take precedence over message sniffing.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrRetryable),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoAttribute):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s: %v", ErrNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return fmt.Errorf("%w: %s: %v", ErrConflict, op, err) // unique_violation
		case "23503":
			return fmt.Errorf("%w: %s: %v", ErrConflict, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s: %v", ErrRetryable, op, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "serialization"):
		return fmt.Errorf("%w: %s: %v", ErrRetryable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
