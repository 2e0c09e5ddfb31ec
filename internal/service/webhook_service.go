package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/internal/models"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
)

type webhookStore interface {
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	Update(ctx context.Context, record *models.Submission) error
}

// WebhookService applies verified EduLegit events to local records.
type WebhookService struct {
	store  webhookStore
	logger *zap.Logger
}

// NewWebhookService constructs a WebhookService.
func NewWebhookService(store webhookStore, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{store: store, logger: logger}
}

// Handle dispatches a verified payload. Unknown events and unresolvable
// targets are ignored, returning a nil id: the webhook contract treats
// those as successful no-ops.
func (s *WebhookService) Handle(ctx context.Context, payload *dto.WebhookPayload) (*int64, error) {
	if payload == nil || payload.Event != dto.EventTaskUserSync {
		return nil, nil
	}

	var data dto.TaskUserSyncData
	if len(payload.Data) > 0 {
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidPayload.Code, appErrors.ErrInvalidPayload.Status, "malformed event data")
		}
	}

	return s.syncTaskUser(ctx, &data)
}

// syncTaskUser marks the record synced and applies the sparse field delta.
// Fields absent from the event are left untouched, unlike the full
// overwrite done during registration reconciliation.
func (s *WebhookService) syncTaskUser(ctx context.Context, data *dto.TaskUserSyncData) (*int64, error) {
	if data.ExternalID == nil || *data.ExternalID == 0 {
		return nil, nil
	}

	record, err := s.store.GetByID(ctx, *data.ExternalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission record")
	}
	if record == nil {
		s.logger.Debug("taskUser.sync for unknown record", zap.Int64("external_id", *data.ExternalID))
		return nil, nil
	}

	record.Status = models.StatusSynced
	record.Error = nil

	if data.Title != nil {
		record.Title = data.Title
	}
	if data.Content != nil {
		record.Content = data.Content
	}
	if data.URL != nil {
		record.ViewURL = data.URL
	}
	if data.AuthKey != nil {
		record.AuthKey = data.AuthKey
	}
	if data.Score != nil {
		record.Score = data.Score
	}
	if data.Plagiarism != nil {
		record.PlagiarismScore = data.Plagiarism
	}
	if data.AIAverageProbability != nil {
		record.AIRate = data.AIAverageProbability
	}
	if data.AIProbability != nil {
		record.AIProbability = data.AIProbability
	}
	if data.LoginTimeToken != nil {
		record.UserKey = data.LoginTimeToken
	}

	if err := s.store.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist event update")
	}

	s.logger.Info("submission synced from webhook", zap.Int64("record_id", record.ID))
	return &record.ID, nil
}
