// Package export builds the employees XLSX workbook and persists submission
// rows to it. The workbook layout is a fixed header row followed by one row
// per submission; the same layout backs the incremental local-file append,
// the per-submission object-store upload, and the on-demand full export.
package export

import (
	"context"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tbourn/go-onboarding-backend/internal/domain"
)

// SheetName is the single worksheet every workbook variant uses.
const SheetName = "Submissions"

// Header is the fixed first row of every workbook, in column order.
var Header = []string{
	"First Name", "Last Name", "Email", "Phone", "City",
	"Office Email", "Employee ID", "Profile Image",
	"Heard From", "Selected Role", "Future Vision",
	"Onboarding Experience", "Created At",
}

// Exporter persists one submission row per call. Implementations are
// selected by configuration: LocalExporter appends to a shared workbook
// file, S3Exporter uploads a per-submission workbook object. Failures must
// be treated by callers as best-effort: logged, never fatal to the
// submission.
type Exporter interface {
	Append(ctx context.Context, s domain.Submission) error
}

// BuildWorkbook returns an in-memory workbook holding the header plus one
// row per submission, in the given order. The caller owns closing the file.
func BuildWorkbook(subs []domain.Submission) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		f.Close()
		return nil, err
	}
	for i, s := range subs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := rowValues(s)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// rowValues flattens a submission into the Header column order.
func rowValues(s domain.Submission) []interface{} {
	return []interface{}{
		s.FirstName, s.LastName, s.Email, s.Phone, s.City,
		s.OfficeEmail, s.EmployeeID, s.ProfileImage,
		s.HeardFrom, s.SelectedRole, s.FutureVision,
		s.OnboardingExperience, s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
