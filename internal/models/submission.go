package models

import "fmt"

// SubmissionStatus tracks the sync lifecycle of a submission record.
type SubmissionStatus int

const (
	// StatusPending marks a record not yet registered with EduLegit, or one
	// whose last registration attempt failed (Error set). Both are stable
	// resting states.
	StatusPending SubmissionStatus = 0
	// StatusSynced marks a record reconciled from an authoritative EduLegit
	// payload. Implies Error is nil.
	StatusSynced SubmissionStatus = 1
)

// String names the status for exports and logs.
func (s SubmissionStatus) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	default:
		return "pending"
	}
}

// DefaultDocumentBaseURL anchors document links when EduLegit has not
// reported a per-document base URL yet.
const DefaultDocumentBaseURL = "https://app.edulegit.com/document/"

// Submission mirrors one host-platform submission inside EduLegit.
// Exactly one row exists per SubmissionRef.
type Submission struct {
	ID              int64            `db:"id" json:"id"`
	SubmissionRef   int64            `db:"submission_ref" json:"submissionRef"`
	AssignmentRef   int64            `db:"assignment_ref" json:"assignmentRef"`
	Title           *string          `db:"title" json:"title,omitempty"`
	Content         *string          `db:"content" json:"content,omitempty"`
	DocumentID      *int64           `db:"document_id" json:"documentId,omitempty"`
	TaskID          *int64           `db:"task_id" json:"taskId,omitempty"`
	TaskUserID      *int64           `db:"task_user_id" json:"taskUserId,omitempty"`
	UserRef         *int64           `db:"user_ref" json:"userRef,omitempty"`
	UserKey         *string          `db:"user_key" json:"-"`
	BaseURL         *string          `db:"base_url" json:"baseUrl,omitempty"`
	ViewURL         *string          `db:"view_url" json:"viewUrl,omitempty"`
	AuthKey         *string          `db:"auth_key" json:"-"`
	Score           *float64         `db:"score" json:"score,omitempty"`
	PlagiarismScore *float64         `db:"plagiarism_score" json:"plagiarismScore,omitempty"`
	AIRate          *float64         `db:"ai_rate" json:"aiRate,omitempty"`
	AIProbability   *float64         `db:"ai_probability" json:"aiProbability,omitempty"`
	Status          SubmissionStatus `db:"status" json:"status"`
	Error           *string          `db:"error" json:"error,omitempty"`
	CreatedAt       int64            `db:"created_at" json:"createdAt"`
	UpdatedAt       int64            `db:"updated_at" json:"updatedAt"`
}

// IsEmpty reports whether the mirrored document has no content yet.
func (s *Submission) IsEmpty() bool {
	return s.Content == nil || *s.Content == ""
}

// DocumentBaseURL returns the reported base URL, falling back to the
// EduLegit document viewer keyed by document id.
func (s *Submission) DocumentBaseURL() string {
	if s.BaseURL != nil && *s.BaseURL != "" {
		return *s.BaseURL
	}
	var docID int64
	if s.DocumentID != nil {
		docID = *s.DocumentID
	}
	return fmt.Sprintf("%s%d", DefaultDocumentBaseURL, docID)
}

// ViewURLString returns the shared-document view URL or "".
func (s *Submission) ViewURLString() string {
	if s.ViewURL == nil {
		return ""
	}
	return *s.ViewURL
}

// UserLoginURL builds the one-time login URL for the submitter, or "" when
// no login token has been issued.
func (s *Submission) UserLoginURL() string {
	if s.UserKey == nil || *s.UserKey == "" {
		return ""
	}
	return s.DocumentBaseURL() + "?tt=" + *s.UserKey
}

// PDFURL returns the PDF rendition URL. Callers must check AuthKey first;
// the key is appended as-is even when unset.
func (s *Submission) PDFURL() string {
	return s.documentVariantURL("pdf")
}

// HTMLURL returns the HTML rendition URL.
func (s *Submission) HTMLURL() string {
	return s.documentVariantURL("html")
}

// TXTURL returns the plain-text rendition URL.
func (s *Submission) TXTURL() string {
	return s.documentVariantURL("txt")
}

// DOCXURL returns the DOCX rendition URL.
func (s *Submission) DOCXURL() string {
	return s.documentVariantURL("docx")
}

func (s *Submission) documentVariantURL(variant string) string {
	key := ""
	if s.AuthKey != nil {
		key = *s.AuthKey
	}
	return s.DocumentBaseURL() + "/" + variant + "?key=" + key
}
