package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edulegit-bridge/internal/client"
	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/internal/models"
	"github.com/noah-isme/edulegit-bridge/internal/repository"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
)

type submissionStoreStub struct {
	byRef       map[int64]*models.Submission
	nextID      int64
	insertErr   error
	updateErr   error
	info        *models.AssignmentContext
	insertCalls int
	updateCalls int
}

func newSubmissionStoreStub() *submissionStoreStub {
	return &submissionStoreStub{byRef: map[int64]*models.Submission{}, nextID: 100}
}

func (s *submissionStoreStub) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	for _, record := range s.byRef {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

func (s *submissionStoreStub) GetBySubmissionRef(ctx context.Context, ref int64) (*models.Submission, error) {
	return s.byRef[ref], nil
}

func (s *submissionStoreStub) ListByAssignmentRef(ctx context.Context, ref int64) ([]models.Submission, error) {
	var result []models.Submission
	for _, record := range s.byRef {
		if record.AssignmentRef == ref {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (s *submissionStoreStub) Insert(ctx context.Context, record *models.Submission) (int64, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	record.ID = s.nextID
	record.CreatedAt = 1700000000
	record.UpdatedAt = 1700000000
	s.byRef[record.SubmissionRef] = record
	return record.ID, nil
}

func (s *submissionStoreStub) Update(ctx context.Context, record *models.Submission) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.byRef[record.SubmissionRef] = record
	return nil
}

func (s *submissionStoreStub) DeleteBySubmissionRef(ctx context.Context, ref int64) (bool, error) {
	if _, ok := s.byRef[ref]; !ok {
		return false, nil
	}
	delete(s.byRef, ref)
	return true, nil
}

func (s *submissionStoreStub) DeleteByAssignmentRef(ctx context.Context, ref int64) (bool, error) {
	deleted := false
	for key, record := range s.byRef {
		if record.AssignmentRef == ref {
			delete(s.byRef, key)
			deleted = true
		}
	}
	return deleted, nil
}

func (s *submissionStoreStub) GetAssignmentContext(ctx context.Context, assignmentRef int64) (*models.AssignmentContext, error) {
	return s.info, nil
}

type clientStub struct {
	resp        *client.Response
	lastRequest interface{}
	calls       int
}

func (c *clientStub) InitAssignment(ctx context.Context, body interface{}) *client.Response {
	c.calls++
	c.lastRequest = body
	return c.resp
}

type settingsStub struct {
	settings dto.InitSettings
}

func (s settingsStub) CheckSettings(ctx context.Context, assignmentRef int64) dto.InitSettings {
	return s.settings
}

func newSyncService(cl edulegitClient, store submissionStore) *SyncService {
	return NewSyncService(cl, store, settingsStub{}, nil, nil, nil, SyncServiceConfig{
		CallbackURL:     "https://lms.example.com/callback",
		PlatformVersion: "4.4",
		PluginVersion:   "1.0",
	})
}

func hostSubmission() *dto.HostSubmission {
	return &dto.HostSubmission{Ref: 11, AssignmentRef: 3, UserRef: 9}
}

const successBody = `{"success":true,"data":{
	"taskDocument":{"id":42,"title":"T","content":"C"},
	"task":{"id":7},
	"taskUser":{"id":9},
	"sharedDocument":{"viewUrl":"https://x/y"},
	"user":{"id":3,"loginTimeToken":"abc"}
}}`

func TestInitiateRejectsMissingReferences(t *testing.T) {
	svc := newSyncService(&clientStub{}, newSubmissionStoreStub())

	_, err := svc.Initiate(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Initiate(context.Background(), &dto.HostSubmission{Ref: 11, UserRef: 9}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Initiate(context.Background(), &dto.HostSubmission{Ref: 11, AssignmentRef: 3}, nil)
	require.Error(t, err)
}

func TestInitiateReconcilesFromRemoteSnapshot(t *testing.T) {
	store := newSubmissionStoreStub()
	cl := &clientStub{resp: &client.Response{Body: successBody, StatusCode: 200}}
	svc := newSyncService(cl, store)

	record, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)
	require.NotNil(t, record)

	require.NotNil(t, record.DocumentID)
	assert.Equal(t, int64(42), *record.DocumentID)
	require.NotNil(t, record.Title)
	assert.Equal(t, "T", *record.Title)
	require.NotNil(t, record.Content)
	assert.Equal(t, "C", *record.Content)
	require.NotNil(t, record.TaskID)
	assert.Equal(t, int64(7), *record.TaskID)
	require.NotNil(t, record.TaskUserID)
	assert.Equal(t, int64(9), *record.TaskUserID)
	require.NotNil(t, record.ViewURL)
	assert.Equal(t, "https://x/y", *record.ViewURL)
	require.NotNil(t, record.UserKey)
	assert.Equal(t, "abc", *record.UserKey)
	assert.Equal(t, models.StatusSynced, record.Status)
	assert.Nil(t, record.Error)
}

func TestInitiateIsIdempotentPerSubmissionRef(t *testing.T) {
	store := newSubmissionStoreStub()
	cl := &clientStub{resp: &client.Response{Body: successBody, StatusCode: 200}}
	svc := newSyncService(cl, store)

	first, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)
	second, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.insertCalls)
}

func TestInitiateCapturesServiceError(t *testing.T) {
	store := newSubmissionStoreStub()
	cl := &clientStub{resp: &client.Response{Body: `{"success":false,"error":"quota exceeded"}`, StatusCode: 200}}
	svc := newSyncService(cl, store)

	record, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.StatusPending, record.Status)
	require.NotNil(t, record.Error)
	assert.Equal(t, "quota exceeded", *record.Error)
}

func TestInitiateCapturesTransportError(t *testing.T) {
	store := newSubmissionStoreStub()
	cl := &clientStub{resp: &client.Response{TransportErr: "dial tcp: connection refused"}}
	svc := newSyncService(cl, store)

	record, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, record.Status)
	require.NotNil(t, record.Error)
	assert.Equal(t, "dial tcp: connection refused", *record.Error)
}

func TestInitiateFallsBackToGenericError(t *testing.T) {
	store := newSubmissionStoreStub()
	// 2xx with an unparsable body: no service error, no transport error.
	cl := &clientStub{resp: &client.Response{Body: "<html></html>", StatusCode: 200}}
	svc := newSyncService(cl, store)

	record, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)
	require.NotNil(t, record.Error)
	assert.Equal(t, genericRemoteError, *record.Error)
}

func TestInitiateSurvivesInsertRace(t *testing.T) {
	store := newSubmissionStoreStub()
	winner := &models.Submission{ID: 55, SubmissionRef: 11, AssignmentRef: 3, Status: models.StatusPending}

	race := &racingStoreStub{submissionStoreStub: store, winner: winner}
	cl := &clientStub{resp: &client.Response{Body: `{"success":false,"error":"later"}`, StatusCode: 200}}
	svc := newSyncService(cl, race)

	record, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(55), record.ID)
}

// racingStoreStub loses the first insert to a concurrent writer.
type racingStoreStub struct {
	*submissionStoreStub
	winner *models.Submission
	raced  bool
}

func (s *racingStoreStub) Insert(ctx context.Context, record *models.Submission) (int64, error) {
	if !s.raced {
		s.raced = true
		s.byRef[s.winner.SubmissionRef] = s.winner
		return 0, repository.ErrDuplicateSubmission
	}
	return s.submissionStoreStub.Insert(ctx, record)
}

func TestInitiateBuildsRegistrationPayload(t *testing.T) {
	store := newSubmissionStoreStub()
	intro := "Write about the French Revolution"
	due := int64(1700090000)
	store.info = &models.AssignmentContext{
		ID:              3,
		CourseRef:       8,
		Name:            "Final essay",
		Intro:           &intro,
		DueDate:         &due,
		CourseShortName: "HIST101",
		CourseFullName:  "History 101",
	}
	cl := &clientStub{resp: &client.Response{Body: successBody, StatusCode: 200}}
	email := "student@example.com"
	svc := NewSyncService(cl, store, settingsStub{settings: dto.InitSettings{AutoPlagiarismCheck: true, MustRecordEvents: true}}, nil, nil, nil, SyncServiceConfig{
		CallbackURL:     "https://lms.example.com/callback",
		PlatformVersion: "4.4",
		PluginVersion:   "1.0",
	})

	_, err := svc.Initiate(context.Background(), hostSubmission(), &models.APIClaims{UserRef: 9, Email: &email})
	require.NoError(t, err)

	request, ok := cl.lastRequest.(dto.InitAssignmentRequest)
	require.True(t, ok)
	assert.Equal(t, "https://lms.example.com/callback", request.Meta.CallbackURL)
	assert.Equal(t, "4.4", request.Meta.Moodle)
	assert.Equal(t, int64(9), request.User.ExternalID)
	require.NotNil(t, request.User.Email)
	assert.Equal(t, email, *request.User.Email)
	// taskUser.externalId carries the local record id, not a remote id.
	assert.Equal(t, int64(101), request.TaskUser.ExternalID)
	assert.Equal(t, "Final essay", request.Task.Title)
	assert.Equal(t, intro, request.Task.Text)
	require.NotNil(t, request.Task.FinishedAt)
	assert.Equal(t, due, *request.Task.FinishedAt)
	assert.Equal(t, "History 101", request.Course.Title)
	assert.True(t, request.Course.Setting.AutoPlagiarismCheck)
	assert.True(t, request.Course.Setting.MustRecordEvents)
}

func TestReconcileHandlesSparseSnapshot(t *testing.T) {
	store := newSubmissionStoreStub()
	cl := &clientStub{resp: &client.Response{Body: `{"success":true,"data":{"taskUser":{"taskId":77}}}`, StatusCode: 200}}
	svc := newSyncService(cl, store)

	record, err := svc.Initiate(context.Background(), hostSubmission(), nil)
	require.NoError(t, err)

	require.NotNil(t, record.DocumentID)
	assert.Zero(t, *record.DocumentID)
	require.NotNil(t, record.TaskID)
	assert.Equal(t, int64(77), *record.TaskID)
	// Neither taskUser.id nor taskUser.taskUserId present: stays NULL.
	assert.Nil(t, record.TaskUserID)
	assert.Equal(t, models.StatusSynced, record.Status)
}

func TestSyncIsAPureLocalRead(t *testing.T) {
	store := newSubmissionStoreStub()
	store.byRef[11] = &models.Submission{ID: 5, SubmissionRef: 11, AssignmentRef: 3}
	cl := &clientStub{}
	svc := newSyncService(cl, store)

	record, err := svc.Sync(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(5), record.ID)
	assert.Zero(t, cl.calls)

	missing, err := svc.Sync(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeletePropagation(t *testing.T) {
	store := newSubmissionStoreStub()
	store.byRef[11] = &models.Submission{ID: 5, SubmissionRef: 11, AssignmentRef: 3}
	store.byRef[12] = &models.Submission{ID: 6, SubmissionRef: 12, AssignmentRef: 3}
	svc := newSyncService(&clientStub{}, store)

	deleted, err := svc.DeleteSubmission(context.Background(), 11)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteAssignment(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, store.byRef)
}
