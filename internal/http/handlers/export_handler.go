// Export download HTTP handler.
//
// This file exposes the workbook download endpoint used by HR:
//   - GET /api/download-employees-excel
//
// The workbook is rebuilt from the database on every request, so the download
// is always complete even when the incremental on-disk export drifted (for
// example after a side-effect failure during a submission).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-onboarding-backend/internal/http/middleware"
)

const (
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	downloadedFileName = "employees.xlsx"
)

// DownloadEmployeesExcel handles GET /api/download-employees-excel. It streams
// every stored submission as a single XLSX attachment.
func (h *Handlers) DownloadEmployeesExcel(c *gin.Context) {
	f, err := h.svc.ExportAll(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, "could not build workbook")
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+downloadedFileName+`"`)
	c.Status(http.StatusOK)

	if _, err := f.WriteTo(c.Writer); err != nil {
		// Headers are already out; all we can do is log the broken stream.
		middleware.LoggerFrom(c).Error().Err(err).Msg("stream workbook")
	}
}
