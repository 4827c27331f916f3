// Identifier preview HTTP handlers.
//
// This file exposes the helper endpoints the intake form calls while the
// candidate is still typing:
//   - POST /api/generate-email   (preview office email for a name)
//   - GET  /api/generate-empid   (preview the next employee ID)
//   - POST /api/check-email      (duplicate personal-email probe)
//   - POST /api/validate-city    (live city validation)
//
// Previews reflect current stored counts and are not reservations: the
// authoritative identifiers are assigned inside the submission transaction.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//
// DTOs
//

// GenerateEmailRequest is the JSON payload for previewing an office email.
type GenerateEmailRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1"`
	LastName  string `json:"lastName" binding:"required,min=1"`
}

// GenerateEmailResponse carries the previewed office email and the number of
// stored submissions that already share the same first/last name.
type GenerateEmailResponse struct {
	Email string `json:"email"`
	Count int64  `json:"count"`
}

// GenerateEmpIDResponse carries the previewed employee ID.
type GenerateEmpIDResponse struct {
	EmployeeID string `json:"employeeId"`
}

// CheckEmailRequest is the JSON payload for the duplicate-email probe.
type CheckEmailRequest struct {
	Email string `json:"email" binding:"required,min=3"`
}

// CheckEmailResponse reports whether the personal email was already submitted.
type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

// ValidateCityRequest is the JSON payload for the live city check.
type ValidateCityRequest struct {
	City string `json:"city" binding:"required,min=1"`
}

// ValidateCityResponse reports whether the geocoding provider knows the city.
type ValidateCityResponse struct {
	IsValid bool `json:"isValid"`
}

//
// Handlers
//

// GenerateEmail handles POST /api/generate-email. It derives the office email
// the given name would receive if submitted now.
func (h *Handlers) GenerateEmail(c *gin.Context) {
	var req GenerateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "firstName and lastName required")
		return
	}

	email, count, err := h.svc.PreviewOfficeEmail(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not generate email")
		return
	}
	ok(c, http.StatusOK, GenerateEmailResponse{Email: email, Count: count})
}

// GenerateEmpID handles GET /api/generate-empid. It derives the employee ID
// the next submission would receive.
func (h *Handlers) GenerateEmpID(c *gin.Context) {
	id, err := h.svc.NextEmployeeID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not generate employee id")
		return
	}
	ok(c, http.StatusOK, GenerateEmpIDResponse{EmployeeID: id})
}

// CheckEmail handles POST /api/check-email. Matching is case-insensitive.
func (h *Handlers) CheckEmail(c *gin.Context) {
	var req CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		return
	}

	exists, err := h.svc.EmailExists(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not check email")
		return
	}
	ok(c, http.StatusOK, CheckEmailResponse{Exists: exists})
}

// ValidateCity handles POST /api/validate-city. Provider outages surface as
// 500 external_error so the frontend can distinguish "unknown city" from
// "could not check".
func (h *Handlers) ValidateCity(c *gin.Context) {
	var req ValidateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "city required")
		return
	}

	valid, err := h.svc.ValidateCity(c.Request.Context(), strings.TrimSpace(req.City))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExternal, "city validation service unavailable")
		return
	}
	ok(c, http.StatusOK, ValidateCityResponse{IsValid: valid})
}
