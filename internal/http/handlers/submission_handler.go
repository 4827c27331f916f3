// Submission HTTP handler.
//
// This file exposes the intake endpoint for new-hire onboarding:
//   - POST /submit  (multipart: "formData" JSON bundle + "profileImage" file)
//
// Handlers are transport-thin: they validate and normalize input, persist the
// uploaded photo to the public uploads directory, call the application service,
// and translate results into HTTP responses. Identifier derivation, badge
// rendering, and the spreadsheet export all happen inside the service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/tbourn/go-onboarding-backend/internal/http/middleware"
	"github.com/tbourn/go-onboarding-backend/internal/services"
)

//
// Service contract (context-aware)
//

// OnboardingService defines the intake operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OnboardingService interface {
	// Submit validates, persists, and post-processes one onboarding form.
	Submit(ctx context.Context, in services.SubmissionInput) (*services.SubmitResult, error)
	// PreviewOfficeEmail derives the office email a name would receive now.
	PreviewOfficeEmail(ctx context.Context, firstName, lastName string) (string, int64, error)
	// NextEmployeeID derives the employee ID the next submission would receive.
	NextEmployeeID(ctx context.Context) (string, error)
	// EmailExists reports whether a personal email was already submitted.
	EmailExists(ctx context.Context, email string) (bool, error)
	// ValidateCity checks a city name against the geocoding provider.
	ValidateCity(ctx context.Context, city string) (bool, error)
	// ExportAll builds a workbook containing every stored submission.
	ExportAll(ctx context.Context) (*excelize.File, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the onboarding API. It depends on an
// abstract service interface to keep transport concerns separate from
// business logic.
type Handlers struct {
	svc       OnboardingService
	uploadDir string
}

// New constructs a Handlers instance bound to the given service. Uploaded
// profile photos are written under uploadDir, which the router also serves
// statically at /uploads.
func New(svc OnboardingService, uploadDir string) *Handlers {
	return &Handlers{svc: svc, uploadDir: uploadDir}
}

//
// DTOs
//

// SubmitResponse is the JSON envelope returned for a successful submission.
// OfficeEmail and EmployeeID are the identifiers assigned to the new hire.
type SubmitResponse struct {
	Message     string `json:"message"`
	OfficeEmail string `json:"officeEmail"`
	EmployeeID  string `json:"employeeId"`
}

// allowedImageExts restricts stored photo extensions to common raster formats.
// Anything else is saved without an extension rather than rejected; the badge
// renderer sniffs the actual format when decoding.
var allowedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// safeExt returns a lowercased, whitelisted extension for an uploaded
// filename, or "" when the extension is missing or unrecognized.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExts[ext]; ok {
		return ext
	}
	return ""
}

//
// Handlers
//

// Submit handles POST /submit.
//
// The request is multipart/form-data with two parts:
//   - formData:     JSON bundle with the form fields (firstName, lastName,
//     email, phone, city, heardFrom, selectedRole, futureVision,
//     onboardingExperience)
//   - profileImage: optional photo upload
//
// The photo is stored as <uploadDir>/<uuid><ext> before the service runs, so
// the badge renderer can read it from disk. Responses:
//
//	200 {message, officeEmail, employeeId}
//	400 malformed input or unknown city (code invalid_city)
//	409 duplicate personal email (code duplicate_email)
//	500 city provider failure (code external_error) or persistence failure
func (h *Handlers) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	raw := c.PostForm("formData")
	if strings.TrimSpace(raw) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "formData field required")
		return
	}

	var in services.SubmissionInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "formData must be valid JSON")
		return
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.City = strings.TrimSpace(in.City)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.City == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "firstName, lastName, email and city are required")
		return
	}

	// Store the photo before calling the service so the badge renderer can
	// load it from disk. The upload is optional.
	if file, err := c.FormFile("profileImage"); err == nil && file != nil {
		name := uuid.NewString() + safeExt(file.Filename)
		dst := filepath.Join(h.uploadDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("save profile image")
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store profile image")
			return
		}
		in.ProfileImage = dst
	}

	res, err := h.svc.Submit(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCity):
			fail(c, http.StatusBadRequest, ErrCodeInvalidCity, "city could not be verified")
		case errors.Is(err, services.ErrDuplicateEmail):
			fail(c, http.StatusConflict, ErrCodeDuplicateEmail, "email already submitted")
		case errors.Is(err, services.ErrCityLookup):
			fail(c, http.StatusInternalServerError, ErrCodeExternal, "city validation service unavailable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, "could not store submission")
		}
		return
	}

	ok(c, http.StatusOK, SubmitResponse{
		Message:     "Form submitted successfully",
		OfficeEmail: res.Submission.OfficeEmail,
		EmployeeID:  res.Submission.EmployeeID,
	})
}
