package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/internal/middleware"
	"github.com/noah-isme/edulegit-bridge/internal/models"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
	"github.com/noah-isme/edulegit-bridge/pkg/response"
)

type submissionSyncService interface {
	Initiate(ctx context.Context, sub *dto.HostSubmission, actor *models.APIClaims) (*models.Submission, error)
	Sync(ctx context.Context, submissionRef int64) (*models.Submission, error)
	DeleteSubmission(ctx context.Context, submissionRef int64) (bool, error)
	DeleteAssignment(ctx context.Context, assignmentRef int64) (bool, error)
}

type submissionExportService interface {
	SubmissionsCSV(ctx context.Context, assignmentRef int64) ([]byte, error)
	AnalysisReportPDF(ctx context.Context, submissionRef int64) ([]byte, error)
}

// SubmissionHandler exposes the host-platform facing submission endpoints.
type SubmissionHandler struct {
	sync   submissionSyncService
	export submissionExportService
}

// NewSubmissionHandler constructs handler.
func NewSubmissionHandler(sync submissionSyncService, export submissionExportService) *SubmissionHandler {
	return &SubmissionHandler{sync: sync, export: export}
}

type initiateRequest struct {
	AssignmentRef int64 `json:"assignmentRef" binding:"required"`
	UserRef       int64 `json:"userRef" binding:"required"`
}

// Initiate godoc
// @Summary Register a submission with EduLegit
// @Tags Submissions
// @Accept json
// @Produce json
// @Param ref path int true "Host submission reference"
// @Param request body initiateRequest true "Submission context"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{ref}/initiate [post]
func (h *SubmissionHandler) Initiate(c *gin.Context) {
	ref, err := pathRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	sub := &dto.HostSubmission{Ref: ref, AssignmentRef: req.AssignmentRef, UserRef: req.UserRef}
	record, err := h.sync.Initiate(c.Request.Context(), sub, middleware.ClaimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSubmissionView(record))
}

// Get godoc
// @Summary Current sync state of a submission
// @Tags Submissions
// @Produce json
// @Param ref path int true "Host submission reference"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{ref} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	ref, err := pathRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.sync.Sync(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	if record == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "submission not found"))
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSubmissionView(record))
}

// DeleteSubmission godoc
// @Summary Remove the record of a deleted host submission
// @Tags Submissions
// @Param ref path int true "Host submission reference"
// @Success 204
// @Security BearerAuth
// @Router /submissions/{ref} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	ref, err := pathRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted, err := h.sync.DeleteSubmission(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "submission not found"))
		return
	}
	response.NoContent(c)
}

// DeleteAssignment godoc
// @Summary Remove all records of a deleted host assignment
// @Tags Assignments
// @Param ref path int true "Host assignment reference"
// @Success 204
// @Security BearerAuth
// @Router /assignments/{ref} [delete]
func (h *SubmissionHandler) DeleteAssignment(c *gin.Context) {
	ref, err := pathRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted, err := h.sync.DeleteAssignment(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "assignment not found"))
		return
	}
	response.NoContent(c)
}

// Report godoc
// @Summary Analysis report of a submission as PDF
// @Tags Submissions
// @Produce application/pdf
// @Param ref path int true "Host submission reference"
// @Success 200
// @Security BearerAuth
// @Router /submissions/{ref}/report.pdf [get]
func (h *SubmissionHandler) Report(c *gin.Context) {
	ref, err := pathRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.export.AnalysisReportPDF(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"submission-%d-report.pdf\"", ref))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", out)
}

// AssignmentCSV godoc
// @Summary Submissions of an assignment as CSV
// @Tags Assignments
// @Produce text/csv
// @Param ref path int true "Host assignment reference"
// @Success 200
// @Security BearerAuth
// @Router /assignments/{ref}/submissions.csv [get]
func (h *SubmissionHandler) AssignmentCSV(c *gin.Context) {
	ref, err := pathRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.export.SubmissionsCSV(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"assignment-%d-submissions.csv\"", ref))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/csv", out)
}

func pathRef(c *gin.Context) (int64, error) {
	ref, err := strconv.ParseInt(c.Param("ref"), 10, 64)
	if err != nil || ref <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "ref must be a positive integer")
	}
	return ref, nil
}
