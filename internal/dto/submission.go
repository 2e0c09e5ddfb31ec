package dto

import "github.com/noah-isme/edulegit-bridge/internal/models"

// HostSubmission is the host platform's description of the submission being
// initiated.
type HostSubmission struct {
	Ref           int64 `json:"ref" validate:"required,gt=0"`
	AssignmentRef int64 `json:"assignmentRef" validate:"required,gt=0"`
	UserRef       int64 `json:"userRef" validate:"required,gt=0"`
}

// SubmissionView is the API projection of a submission record with its
// derived document URLs.
type SubmissionView struct {
	Record       *models.Submission `json:"record"`
	ViewURL      string             `json:"viewUrl,omitempty"`
	UserLoginURL string             `json:"userLoginUrl,omitempty"`
	PDFURL       string             `json:"pdfUrl,omitempty"`
	HTMLURL      string             `json:"htmlUrl,omitempty"`
	TXTURL       string             `json:"txtUrl,omitempty"`
	DOCXURL      string             `json:"docxUrl,omitempty"`
}

// NewSubmissionView derives the URL fields from the record. Document
// variants are only exposed when an auth key is present.
func NewSubmissionView(record *models.Submission) *SubmissionView {
	view := &SubmissionView{
		Record:       record,
		ViewURL:      record.ViewURLString(),
		UserLoginURL: record.UserLoginURL(),
	}
	if record.AuthKey != nil && *record.AuthKey != "" {
		view.PDFURL = record.PDFURL()
		view.HTMLURL = record.HTMLURL()
		view.TXTURL = record.TXTURL()
		view.DOCXURL = record.DOCXURL()
	}
	return view
}
