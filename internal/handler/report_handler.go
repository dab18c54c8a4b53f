package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	"github.com/hearthworks/volunteer-api/internal/service"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
	"github.com/hearthworks/volunteer-api/pkg/response"
)

// ReportHandler serves the hours report in JSON, CSV, or PDF, and the
// background export endpoints.
type ReportHandler struct {
	service *service.ReportService
	exports *service.ExportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc, exports: exports}
}

// Hours godoc
// @Summary Volunteer hours report
// @Tags Reports
// @Produce json
// @Param from query string true "Period start (RFC3339 or YYYY-MM-DD)"
// @Param to query string true "Period end (RFC3339 or YYYY-MM-DD)"
// @Param format query string false "json, csv, or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /reports/hours [get]
func (h *ReportHandler) Hours(c *gin.Context) {
	from, err := parseReportTime(c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid from"))
		return
	}
	to, err := parseReportTime(c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid to"))
		return
	}
	q := dto.HoursReportQuery{From: from, To: to, Format: c.DefaultQuery("format", "json")}

	switch q.Format {
	case "json":
		report, err := h.service.Hours(c.Request.Context(), q)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, report, nil)
	case "csv":
		data, err := h.service.HoursCSV(c.Request.Context(), q)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="volunteer-hours.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.service.HoursPDF(c.Request.Context(), q)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="volunteer-hours.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", q.Format)))
	}
}

// CreateExport godoc
// @Summary Start a background hours export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export parameters"
// @Success 202 {object} response.Envelope
// @Router /reports/exports [post]
func (h *ReportHandler) CreateExport(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Export job status
// @Tags Reports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/exports/{id} [get]
func (h *ReportHandler) ExportStatus(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// DownloadExport godoc
// @Summary Download a finished export by signed token
// @Tags Reports
// @Param token path string true "Signed download token"
// @Success 200
// @Router /reports/export/{token} [get]
func (h *ReportHandler) DownloadExport(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	contentType := "text/csv"
	if download.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, download.Filename, time.Now(), download.File)
}

func parseReportTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing value")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
