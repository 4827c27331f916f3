// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Submission model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-onboarding-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Email uniqueness is case-insensitive by contract; every write and every
// comparison goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateSubmission inserts s. A missing ID is assigned a fresh UUID and a
// zero CreatedAt is set to the current UTC time; the email is normalized
// before the insert so the unique index enforces case-insensitive
// uniqueness.
func CreateSubmission(ctx context.Context, db *gorm.DB, s *domain.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.Email = NormalizeEmail(s.Email)
	return db.WithContext(ctx).Create(s).Error
}

// EmailExists reports whether a submission with the normalized email is
// already stored.
func EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("email = ?", NormalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

// CountByName returns the number of submissions whose first and last name
// both match case-insensitively. Used by the office-email preview; actual
// assignment goes through the name counter.
func CountByName(ctx context.Context, db *gorm.DB, firstName, lastName string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("LOWER(first_name) = ? AND LOWER(last_name) = ?",
			strings.ToLower(firstName), strings.ToLower(lastName)).
		Count(&n).Error
	return n, err
}

// CountSubmissions returns the total number of stored submissions.
func CountSubmissions(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Count(&n).Error
	return n, err
}

// ListSubmissions returns every stored submission ordered by creation time
// ascending (export order).
func ListSubmissions(ctx context.Context, db *gorm.DB) ([]domain.Submission, error) {
	var out []domain.Submission
	err := db.WithContext(ctx).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
