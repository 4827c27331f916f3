package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/tbourn/go-onboarding-backend/internal/domain"
)

// WorkbookFileName is the local workbook the LocalExporter appends to.
const WorkbookFileName = "employees.xlsx"

// LocalExporter appends each submission as one row to a single workbook
// file under Dir, creating the workbook with a header row on first use.
//
// Appending re-reads and rewrites the whole file, so this exporter is not
// safe under concurrent writers; the submission path calls it sequentially
// per request and tolerates lost rows as a best-effort artifact.
type LocalExporter struct {
	Dir string
}

// NewLocalExporter constructs a LocalExporter writing under dir.
func NewLocalExporter(dir string) *LocalExporter {
	return &LocalExporter{Dir: dir}
}

// Path returns the workbook file path.
func (e *LocalExporter) Path() string {
	return filepath.Join(e.Dir, WorkbookFileName)
}

// Append writes one row for s at the end of the workbook's first sheet.
func (e *LocalExporter) Append(ctx context.Context, s domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := e.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := BuildWorkbook([]domain.Submission{s})
		if err != nil {
			return fmt.Errorf("export: build workbook: %w", err)
		}
		defer f.Close()
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("export: save workbook: %w", err)
		}
		return nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("export: open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("export: read rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	row := rowValues(s)
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("export: append row: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save workbook: %w", err)
	}
	return nil
}
