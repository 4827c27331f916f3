// Package services – SubmissionService
//
// This file implements the SubmissionService, which orchestrates the full
// onboarding flow: city validation, duplicate-email rejection, identifier
// assignment, persistence, and the best-effort badge/workbook side effects.
// Identifier assignment runs inside the same transaction as the insert, so
// concurrent submissions can never be handed the same office-email suffix
// or employee ID.
//
// Service-level errors (ErrInvalidCity, ErrDuplicateEmail, ErrCityLookup)
// are returned for predictable cases so handlers can map them to HTTP
// results consistently. Side-effect failures after the record is persisted
// never fail the submission; they are logged, counted, and reflected in
// the returned SubmitResult.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/tbourn/go-onboarding-backend/internal/domain"
	"github.com/tbourn/go-onboarding-backend/internal/export"
	"github.com/tbourn/go-onboarding-backend/internal/identifier"
)

var (
	// submissionsTotal counts persisted submissions.
	submissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "onboarding_submissions_total",
		Help: "Total number of persisted onboarding submissions.",
	})

	// sideEffectFailures counts best-effort artifact failures after the
	// core record was persisted, labeled by effect ("badge" or "export").
	sideEffectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_side_effect_failures_total",
		Help: "Badge or workbook side-effect failures after a successful submission.",
	}, []string{"effect"})
)

func init() {
	prometheus.MustRegister(submissionsTotal, sideEffectFailures)
}

// SubmissionRepo defines the repository contract required by SubmissionService.
type SubmissionRepo interface {
	// Create inserts a new submission row.
	Create(ctx context.Context, db *gorm.DB, s *domain.Submission) error

	// EmailExists reports whether the normalized email is already stored.
	EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error)

	// CountByName counts submissions matching the name pair case-insensitively.
	CountByName(ctx context.Context, db *gorm.DB, firstName, lastName string) (int64, error)

	// Count returns the total number of submissions.
	Count(ctx context.Context, db *gorm.DB) (int64, error)

	// List returns all submissions in export order.
	List(ctx context.Context, db *gorm.DB) ([]domain.Submission, error)

	// NextSequence allocates the next 0-indexed value of a named counter.
	NextSequence(ctx context.Context, db *gorm.DB, key string) (int64, error)
}

// CityValidator reduces a geocoding lookup to a boolean.
type CityValidator interface {
	Validate(ctx context.Context, city string) (bool, error)
}

// BadgeRenderer produces the badge artifact for a persisted submission.
type BadgeRenderer interface {
	Render(ctx context.Context, name, designation, profileImageRef string) (string, error)
}

// SubmissionInput carries the parsed form fields of one onboarding
// submission. ProfileImage is the stored reference of the uploaded photo
// (set by the transport layer after saving the upload).
type SubmissionInput struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	City                 string `json:"city"`
	HeardFrom            string `json:"heardFrom"`
	SelectedRole         string `json:"selectedRole"`
	FutureVision         string `json:"futureVision"`
	OnboardingExperience string `json:"onboardingExperience"`

	ProfileImage string `json:"-"`
}

// SubmitResult reports the outcome of a submission, distinguishing core
// success from partial artifact failure: the record is persisted whenever
// Submit returns nil, while BadgeGenerated/ExportAppended reflect the
// best-effort side effects.
type SubmitResult struct {
	Submission     *domain.Submission
	BadgePath      string
	BadgeGenerated bool
	ExportAppended bool
}

// SubmissionService implements the onboarding use-cases.
type SubmissionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the submission repository used by this service.
	Repo SubmissionRepo
	// Cities validates submitted cities against the geocoding provider.
	Cities CityValidator
	// Badges renders the ID badge after a successful submission; may be nil
	// in tests.
	Badges BadgeRenderer
	// Exporter appends each submission to the employees workbook; may be
	// nil in tests.
	Exporter export.Exporter
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(db *gorm.DB, repo SubmissionRepo, cities CityValidator, badges BadgeRenderer, exp export.Exporter) *SubmissionService {
	return &SubmissionService{DB: db, Repo: repo, Cities: cities, Badges: badges, Exporter: exp}
}

// Submit runs the full onboarding flow for in.
//
// Order of operations:
//  1. City validation — ErrInvalidCity when the provider has no match,
//     a wrapped ErrCityLookup when the provider is unreachable.
//  2. One transaction: duplicate-email check (ErrDuplicateEmail), name
//     counter → office email, employee counter → employee ID, insert.
//  3. Post-commit best effort: badge render, workbook append. Failures are
//     logged and counted but never returned.
func (s *SubmissionService) Submit(ctx context.Context, in SubmissionInput) (*SubmitResult, error) {
	valid, err := s.Cities.Validate(ctx, in.City)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCityLookup, err)
	}
	if !valid {
		return nil, ErrInvalidCity
	}

	sub := &domain.Submission{
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		Phone:                in.Phone,
		City:                 in.City,
		ProfileImage:         in.ProfileImage,
		HeardFrom:            in.HeardFrom,
		SelectedRole:         in.SelectedRole,
		FutureVision:         in.FutureVision,
		OnboardingExperience: in.OnboardingExperience,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.Repo.EmailExists(ctx, tx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmail
		}

		nameSeq, err := s.Repo.NextSequence(ctx, tx, identifier.NameKey(in.FirstName, in.LastName))
		if err != nil {
			return err
		}
		empSeq, err := s.Repo.NextSequence(ctx, tx, identifier.EmployeeKey)
		if err != nil {
			return err
		}

		sub.OfficeEmail = identifier.OfficeEmail(in.FirstName, in.LastName, nameSeq)
		sub.EmployeeID = identifier.EmployeeID(empSeq)

		if err := s.Repo.Create(ctx, tx, sub); err != nil {
			// A concurrent insert may beat the existence check; the unique
			// index is the authority.
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	submissionsTotal.Inc()

	res := &SubmitResult{Submission: sub}
	s.runSideEffects(ctx, sub, res)
	return res, nil
}

// runSideEffects renders the badge and appends the export row. Both are
// best-effort: the submission is already durable and a missing artifact
// only degrades the result.
func (s *SubmissionService) runSideEffects(ctx context.Context, sub *domain.Submission, res *SubmitResult) {
	if s.Badges != nil {
		fullName := strings.TrimSpace(sub.FirstName + " " + sub.LastName)
		path, err := s.Badges.Render(ctx, fullName, sub.SelectedRole, sub.ProfileImage)
		if err != nil {
			sideEffectFailures.WithLabelValues("badge").Inc()
			log.Error().Err(err).
				Str("submission_id", sub.ID).
				Str("employee_id", sub.EmployeeID).
				Msg("badge rendering failed")
		} else {
			res.BadgePath = path
			res.BadgeGenerated = true
		}
	}

	if s.Exporter != nil {
		if err := s.Exporter.Append(ctx, *sub); err != nil {
			sideEffectFailures.WithLabelValues("export").Inc()
			log.Error().Err(err).
				Str("submission_id", sub.ID).
				Str("employee_id", sub.EmployeeID).
				Msg("workbook export failed")
		} else {
			res.ExportAppended = true
		}
	}
}

// PreviewOfficeEmail derives the office email a submission with the given
// name pair would receive right now, without persisting anything. The
// returned count is the number of existing same-name submissions.
//
// This is a preview, not a reservation: a concurrent submission can change
// the outcome before the form is actually submitted.
func (s *SubmissionService) PreviewOfficeEmail(ctx context.Context, firstName, lastName string) (string, int64, error) {
	count, err := s.Repo.CountByName(ctx, s.DB, firstName, lastName)
	if err != nil {
		return "", 0, err
	}
	return identifier.OfficeEmail(firstName, lastName, count), count, nil
}

// NextEmployeeID derives the employee ID the next submission would receive,
// from the current total. Preview only.
func (s *SubmissionService) NextEmployeeID(ctx context.Context) (string, error) {
	total, err := s.Repo.Count(ctx, s.DB)
	if err != nil {
		return "", err
	}
	return identifier.EmployeeID(total), nil
}

// EmailExists reports whether an email is already registered.
func (s *SubmissionService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.Repo.EmailExists(ctx, s.DB, email)
}

// ValidateCity exposes the city validator as a standalone operation.
func (s *SubmissionService) ValidateCity(ctx context.Context, city string) (bool, error) {
	valid, err := s.Cities.Validate(ctx, city)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCityLookup, err)
	}
	return valid, nil
}

// ExportAll builds a workbook with every stored submission (header plus one
// row per record, creation order). The caller owns closing the file.
func (s *SubmissionService) ExportAll(ctx context.Context) (*excelize.File, error) {
	subs, err := s.Repo.List(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return export.BuildWorkbook(subs)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
