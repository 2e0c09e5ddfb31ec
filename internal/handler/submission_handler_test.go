package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/internal/middleware"
	"github.com/noah-isme/edulegit-bridge/internal/models"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
)

type syncServiceMock struct {
	initiateResp   *models.Submission
	initiateErr    error
	syncResp       *models.Submission
	syncErr        error
	deleteOK       bool
	deleteErr      error
	lastSub        *dto.HostSubmission
	lastActor      *models.APIClaims
	initiateCalled bool
}

func (m *syncServiceMock) Initiate(ctx context.Context, sub *dto.HostSubmission, actor *models.APIClaims) (*models.Submission, error) {
	m.initiateCalled = true
	m.lastSub = sub
	m.lastActor = actor
	return m.initiateResp, m.initiateErr
}

func (m *syncServiceMock) Sync(ctx context.Context, submissionRef int64) (*models.Submission, error) {
	return m.syncResp, m.syncErr
}

func (m *syncServiceMock) DeleteSubmission(ctx context.Context, submissionRef int64) (bool, error) {
	return m.deleteOK, m.deleteErr
}

func (m *syncServiceMock) DeleteAssignment(ctx context.Context, assignmentRef int64) (bool, error) {
	return m.deleteOK, m.deleteErr
}

type exportServiceMock struct {
	csvResp []byte
	pdfResp []byte
	err     error
}

func (m *exportServiceMock) SubmissionsCSV(ctx context.Context, assignmentRef int64) ([]byte, error) {
	return m.csvResp, m.err
}

func (m *exportServiceMock) AnalysisReportPDF(ctx context.Context, submissionRef int64) ([]byte, error) {
	return m.pdfResp, m.err
}

func testContext(t *testing.T, method, target string, body []byte, ref string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "ref", Value: ref}}
	return c, w
}

func TestSubmissionHandlerInitiate(t *testing.T) {
	mockSvc := &syncServiceMock{initiateResp: &models.Submission{ID: 5, SubmissionRef: 11, AssignmentRef: 3}}
	handler := NewSubmissionHandler(mockSvc, &exportServiceMock{})

	payload, _ := json.Marshal(initiateRequest{AssignmentRef: 3, UserRef: 7})
	c, w := testContext(t, http.MethodPost, "/submissions/11/initiate", payload, "11")
	email := "teacher@example.com"
	c.Set(middleware.ContextUserKey, &models.APIClaims{UserRef: 9, Email: &email})

	handler.Initiate(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mockSvc.initiateCalled)
	assert.Equal(t, int64(11), mockSvc.lastSub.Ref)
	assert.Equal(t, int64(3), mockSvc.lastSub.AssignmentRef)
	assert.Equal(t, int64(7), mockSvc.lastSub.UserRef)
	require.NotNil(t, mockSvc.lastActor)
	assert.Equal(t, int64(9), mockSvc.lastActor.UserRef)
}

func TestSubmissionHandlerInitiateInvalidRef(t *testing.T) {
	mockSvc := &syncServiceMock{}
	handler := NewSubmissionHandler(mockSvc, &exportServiceMock{})

	c, w := testContext(t, http.MethodPost, "/submissions/abc/initiate", []byte(`{"assignmentRef":3,"userRef":7}`), "abc")
	handler.Initiate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.initiateCalled)
}

func TestSubmissionHandlerInitiateInvalidBody(t *testing.T) {
	mockSvc := &syncServiceMock{}
	handler := NewSubmissionHandler(mockSvc, &exportServiceMock{})

	c, w := testContext(t, http.MethodPost, "/submissions/11/initiate", []byte(`{"assignmentRef":`), "11")
	handler.Initiate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.initiateCalled)
}

func TestSubmissionHandlerGet(t *testing.T) {
	authKey := "key-1"
	viewURL := "https://app.example.com/doc/42"
	mockSvc := &syncServiceMock{syncResp: &models.Submission{
		ID:            5,
		SubmissionRef: 11,
		ViewURL:       &viewURL,
		AuthKey:       &authKey,
		Status:        models.StatusSynced,
	}}
	handler := NewSubmissionHandler(mockSvc, &exportServiceMock{})

	c, w := testContext(t, http.MethodGet, "/submissions/11", nil, "11")
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), viewURL)
	assert.Contains(t, w.Body.String(), "pdfUrl")
}

func TestSubmissionHandlerGetNotFound(t *testing.T) {
	handler := NewSubmissionHandler(&syncServiceMock{}, &exportServiceMock{})

	c, w := testContext(t, http.MethodGet, "/submissions/11", nil, "11")
	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionHandlerDelete(t *testing.T) {
	handler := NewSubmissionHandler(&syncServiceMock{deleteOK: true}, &exportServiceMock{})

	c, w := testContext(t, http.MethodDelete, "/submissions/11", nil, "11")
	handler.DeleteSubmission(c)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestSubmissionHandlerDeleteMissing(t *testing.T) {
	handler := NewSubmissionHandler(&syncServiceMock{}, &exportServiceMock{})

	c, w := testContext(t, http.MethodDelete, "/assignments/3", nil, "3")
	handler.DeleteAssignment(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionHandlerReport(t *testing.T) {
	handler := NewSubmissionHandler(&syncServiceMock{}, &exportServiceMock{pdfResp: []byte("%PDF-1.4")})

	c, w := testContext(t, http.MethodGet, "/submissions/11/report.pdf", nil, "11")
	handler.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "submission-11-report.pdf")
}

func TestSubmissionHandlerReportNotFound(t *testing.T) {
	handler := NewSubmissionHandler(&syncServiceMock{}, &exportServiceMock{err: appErrors.ErrNotFound})

	c, w := testContext(t, http.MethodGet, "/submissions/11/report.pdf", nil, "11")
	handler.Report(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmissionHandlerAssignmentCSV(t *testing.T) {
	handler := NewSubmissionHandler(&syncServiceMock{}, &exportServiceMock{csvResp: []byte("Submission,User\n11,7\n")})

	c, w := testContext(t, http.MethodGet, "/assignments/3/submissions.csv", nil, "3")
	handler.AssignmentCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "11,7")
}
