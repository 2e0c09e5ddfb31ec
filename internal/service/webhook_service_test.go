package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/internal/models"
)

type webhookStoreStub struct {
	records   map[int64]*models.Submission
	updateErr error
	updated   *models.Submission
}

func (s *webhookStoreStub) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	return s.records[id], nil
}

func (s *webhookStoreStub) Update(ctx context.Context, record *models.Submission) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = record
	return nil
}

func taskUserSyncPayload(t *testing.T, data map[string]interface{}) *dto.WebhookPayload {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &dto.WebhookPayload{
		Event:     dto.EventTaskUserSync,
		Data:      raw,
		Timestamp: "1714000000",
		Signature: "verified-upstream",
	}
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	store := &webhookStoreStub{records: map[int64]*models.Submission{}}
	svc := NewWebhookService(store, nil)

	id, err := svc.Handle(context.Background(), &dto.WebhookPayload{Event: "taskUser.created"})
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Nil(t, store.updated)
}

func TestWebhookRequiresExternalID(t *testing.T) {
	store := &webhookStoreStub{records: map[int64]*models.Submission{}}
	svc := NewWebhookService(store, nil)

	id, err := svc.Handle(context.Background(), taskUserSyncPayload(t, map[string]interface{}{"score": 0.9}))
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Nil(t, store.updated)
}

func TestWebhookIgnoresUnknownRecord(t *testing.T) {
	store := &webhookStoreStub{records: map[int64]*models.Submission{}}
	svc := NewWebhookService(store, nil)

	id, err := svc.Handle(context.Background(), taskUserSyncPayload(t, map[string]interface{}{"externalId": 5}))
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestWebhookAppliesSparseUpdate(t *testing.T) {
	title := "Essay"
	content := "Original text"
	failure := "previous failure"
	store := &webhookStoreStub{records: map[int64]*models.Submission{
		5: {
			ID:            5,
			SubmissionRef: 11,
			AssignmentRef: 3,
			Title:         &title,
			Content:       &content,
			Status:        models.StatusPending,
			Error:         &failure,
		},
	}}
	svc := NewWebhookService(store, nil)

	id, err := svc.Handle(context.Background(), taskUserSyncPayload(t, map[string]interface{}{
		"externalId": 5,
		"score":      0.9,
	}))
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(5), *id)

	record := store.updated
	require.NotNil(t, record)
	require.NotNil(t, record.Score)
	assert.Equal(t, 0.9, *record.Score)
	// Omitted fields stay untouched.
	require.NotNil(t, record.Title)
	assert.Equal(t, "Essay", *record.Title)
	require.NotNil(t, record.Content)
	assert.Equal(t, "Original text", *record.Content)
	assert.Equal(t, models.StatusSynced, record.Status)
	assert.Nil(t, record.Error)
}

func TestWebhookAppliesFullDelta(t *testing.T) {
	store := &webhookStoreStub{records: map[int64]*models.Submission{
		5: {ID: 5, SubmissionRef: 11, AssignmentRef: 3},
	}}
	svc := NewWebhookService(store, nil)

	id, err := svc.Handle(context.Background(), taskUserSyncPayload(t, map[string]interface{}{
		"externalId":           5,
		"title":                "New title",
		"content":              "New content",
		"url":                  "https://app.example.com/doc/42",
		"authKey":              "key-1",
		"plagiarism":           0.12,
		"aiAverageProbability": 0.3,
		"aiProbability":        0.4,
		"loginTimeToken":       "tt-9",
	}))
	require.NoError(t, err)
	require.NotNil(t, id)

	record := store.updated
	require.NotNil(t, record)
	assert.Equal(t, "New title", *record.Title)
	assert.Equal(t, "https://app.example.com/doc/42", *record.ViewURL)
	assert.Equal(t, "key-1", *record.AuthKey)
	assert.Equal(t, 0.12, *record.PlagiarismScore)
	assert.Equal(t, 0.3, *record.AIRate)
	assert.Equal(t, 0.4, *record.AIProbability)
	assert.Equal(t, "tt-9", *record.UserKey)
}

func TestWebhookMalformedDataFails(t *testing.T) {
	store := &webhookStoreStub{records: map[int64]*models.Submission{}}
	svc := NewWebhookService(store, nil)

	_, err := svc.Handle(context.Background(), &dto.WebhookPayload{
		Event: dto.EventTaskUserSync,
		Data:  json.RawMessage(`{"externalId":`),
	})
	require.Error(t, err)
}

func TestWebhookPersistenceFailure(t *testing.T) {
	store := &webhookStoreStub{
		records:   map[int64]*models.Submission{5: {ID: 5}},
		updateErr: errors.New("db gone"),
	}
	svc := NewWebhookService(store, nil)

	_, err := svc.Handle(context.Background(), taskUserSyncPayload(t, map[string]interface{}{"externalId": 5}))
	require.Error(t, err)
}
