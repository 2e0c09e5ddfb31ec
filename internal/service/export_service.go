package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edulegit-bridge/internal/models"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
	"github.com/noah-isme/edulegit-bridge/pkg/export"
)

type exportStore interface {
	GetBySubmissionRef(ctx context.Context, ref int64) (*models.Submission, error)
	ListByAssignmentRef(ctx context.Context, ref int64) ([]models.Submission, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderSummary(title string, fields []export.SummaryField) ([]byte, error)
}

// ExportService renders submission records into downloadable documents.
type ExportService struct {
	store  exportStore
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the default exporters.
func NewExportService(store exportStore, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{store: store, csv: csv, pdf: pdf, logger: logger}
}

// SubmissionsCSV renders every record of an assignment as a CSV table.
func (s *ExportService) SubmissionsCSV(ctx context.Context, assignmentRef int64) ([]byte, error) {
	records, err := s.store.ListByAssignmentRef(ctx, assignmentRef)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignment submissions")
	}

	data := export.Dataset{
		Headers: []string{"Submission", "User", "Document", "Status", "Score", "Plagiarism", "AI Rate", "View URL", "Updated"},
	}
	for i := range records {
		record := &records[i]
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(record.SubmissionRef, 10),
			formatInt(record.UserRef),
			formatInt(record.DocumentID),
			record.Status.String(),
			formatFloat(record.Score),
			formatFloat(record.PlagiarismScore),
			formatFloat(record.AIRate),
			record.ViewURLString(),
			formatTime(record.UpdatedAt),
		})
	}

	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return out, nil
}

// AnalysisReportPDF renders the analysis summary of a single submission.
func (s *ExportService) AnalysisReportPDF(ctx context.Context, submissionRef int64) ([]byte, error) {
	record, err := s.store.GetBySubmissionRef(ctx, submissionRef)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission record")
	}
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}

	fields := []export.SummaryField{
		{Label: "Submission", Value: strconv.FormatInt(record.SubmissionRef, 10)},
		{Label: "Assignment", Value: strconv.FormatInt(record.AssignmentRef, 10)},
		{Label: "Status", Value: record.Status.String()},
	}
	if record.Title != nil && *record.Title != "" {
		fields = append(fields, export.SummaryField{Label: "Title", Value: *record.Title})
	}
	if record.DocumentID != nil {
		fields = append(fields, export.SummaryField{Label: "Document", Value: strconv.FormatInt(*record.DocumentID, 10)})
	}
	fields = append(fields,
		export.SummaryField{Label: "Score", Value: formatFloat(record.Score)},
		export.SummaryField{Label: "Plagiarism", Value: formatFloat(record.PlagiarismScore)},
		export.SummaryField{Label: "AI Rate", Value: formatFloat(record.AIRate)},
		export.SummaryField{Label: "AI Probability", Value: formatFloat(record.AIProbability)},
	)
	if url := record.ViewURLString(); url != "" {
		fields = append(fields, export.SummaryField{Label: "View URL", Value: url})
	}
	if record.Error != nil && *record.Error != "" {
		fields = append(fields, export.SummaryField{Label: "Last Error", Value: *record.Error})
	}
	fields = append(fields, export.SummaryField{Label: "Updated", Value: formatTime(record.UpdatedAt)})

	title := fmt.Sprintf("Analysis Report - Submission %d", record.SubmissionRef)
	out, err := s.pdf.RenderSummary(title, fields)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	return out, nil
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
