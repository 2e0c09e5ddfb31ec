package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edulegit-bridge/internal/client"
	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/internal/models"
	"github.com/noah-isme/edulegit-bridge/internal/repository"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
)

// genericRemoteError is stored when EduLegit fails without an explanation.
const genericRemoteError = "EduLegit service error."

type edulegitClient interface {
	InitAssignment(ctx context.Context, body interface{}) *client.Response
}

type submissionStore interface {
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	GetBySubmissionRef(ctx context.Context, ref int64) (*models.Submission, error)
	ListByAssignmentRef(ctx context.Context, ref int64) ([]models.Submission, error)
	Insert(ctx context.Context, record *models.Submission) (int64, error)
	Update(ctx context.Context, record *models.Submission) error
	DeleteBySubmissionRef(ctx context.Context, ref int64) (bool, error)
	DeleteByAssignmentRef(ctx context.Context, ref int64) (bool, error)
	GetAssignmentContext(ctx context.Context, assignmentRef int64) (*models.AssignmentContext, error)
}

type checkSettings interface {
	CheckSettings(ctx context.Context, assignmentRef int64) dto.InitSettings
}

type contextCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// SyncServiceConfig carries the identity the bridge registers with.
type SyncServiceConfig struct {
	CallbackURL     string
	PlatformVersion string
	PluginVersion   string
	ContextCacheTTL time.Duration
}

// SyncService orchestrates submission registration with EduLegit and keeps
// the local record reconciled with the remote state.
type SyncService struct {
	client    edulegitClient
	store     submissionStore
	settings  checkSettings
	cache     contextCache
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SyncServiceConfig
}

// NewSyncService constructs a SyncService. The cache is optional.
func NewSyncService(cl edulegitClient, store submissionStore, settings checkSettings, cache contextCache, validate *validator.Validate, logger *zap.Logger, cfg SyncServiceConfig) *SyncService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		client:    cl,
		store:     store,
		settings:  settings,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Initiate registers a submission with EduLegit. A remote failure is not an
// error: the record is returned in its PENDING resting state with the
// failure text captured. Only persistence faults surface as errors.
func (s *SyncService) Initiate(ctx context.Context, sub *dto.HostSubmission, actor *models.APIClaims) (*models.Submission, error) {
	if sub == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission is required")
	}
	if err := s.validator.Struct(sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "submission is missing required references")
	}

	record, err := s.getOrCreate(ctx, sub)
	if err != nil {
		return nil, err
	}

	info, err := s.assignmentContext(ctx, sub.AssignmentRef)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment context")
	}

	request := s.buildInitRequest(ctx, sub, actor, record, info)
	resp := s.client.InitAssignment(ctx, request)

	envelope := resp.Payload()
	var data *dto.RemoteData
	if envelope != nil {
		data = envelope.Data
	}

	if !resp.IsSuccess() || envelope == nil || !envelope.Success || data == nil {
		errText := remoteErrorText(envelope, resp)
		record.Status = models.StatusPending
		record.Error = &errText

		s.logger.Warn("edulegit registration failed",
			zap.Int64("submission_ref", sub.Ref),
			zap.Int("http_status", resp.StatusCode),
			zap.String("error", errText),
		)

		if err := s.store.Update(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist registration failure")
		}
		return record, nil
	}

	return s.reconcile(ctx, sub, data)
}

// Sync returns the current local record for a submission reference without
// contacting EduLegit. Not-found yields (nil, nil).
func (s *SyncService) Sync(ctx context.Context, submissionRef int64) (*models.Submission, error) {
	return s.store.GetBySubmissionRef(ctx, submissionRef)
}

// ListByAssignment returns every record of an assignment.
func (s *SyncService) ListByAssignment(ctx context.Context, assignmentRef int64) ([]models.Submission, error) {
	return s.store.ListByAssignmentRef(ctx, assignmentRef)
}

// DeleteSubmission propagates a host-side submission removal.
func (s *SyncService) DeleteSubmission(ctx context.Context, submissionRef int64) (bool, error) {
	return s.store.DeleteBySubmissionRef(ctx, submissionRef)
}

// DeleteAssignment propagates a host-side assignment removal.
func (s *SyncService) DeleteAssignment(ctx context.Context, assignmentRef int64) (bool, error) {
	return s.store.DeleteByAssignmentRef(ctx, assignmentRef)
}

// reconcile overwrites the local record from an authoritative remote
// snapshot. Unlike webhook deltas this is a full overwrite: fields absent
// from the snapshot reset to their zero interpretation.
func (s *SyncService) reconcile(ctx context.Context, sub *dto.HostSubmission, data *dto.RemoteData) (*models.Submission, error) {
	record, err := s.getOrCreate(ctx, sub)
	if err != nil {
		return nil, err
	}

	doc := data.TaskDocument
	record.Title = nil
	record.Content = nil
	record.Score = nil
	record.PlagiarismScore = nil
	record.AIRate = nil
	record.AIProbability = nil
	docID := int64(0)
	if doc != nil {
		record.Title = doc.Title
		record.Content = doc.Content
		record.Score = doc.Score
		record.PlagiarismScore = doc.Plagiarism
		record.AIRate = doc.AIAverageProbability
		record.AIProbability = doc.AIProbability
		if doc.ID != nil {
			docID = *doc.ID
		}
	}
	record.DocumentID = &docID

	taskID := int64(0)
	if data.Task != nil && data.Task.ID != nil {
		taskID = *data.Task.ID
	} else if data.TaskUser != nil && data.TaskUser.TaskID != nil {
		taskID = *data.TaskUser.TaskID
	}
	record.TaskID = &taskID

	// Left NULL when the snapshot names neither id form.
	record.TaskUserID = nil
	if data.TaskUser != nil {
		if data.TaskUser.ID != nil {
			record.TaskUserID = data.TaskUser.ID
		} else if data.TaskUser.TaskUserID != nil {
			record.TaskUserID = data.TaskUser.TaskUserID
		}
	}

	record.ViewURL = nil
	record.AuthKey = nil
	if shared := data.SharedDocument; shared != nil {
		if shared.ViewURL != nil {
			record.ViewURL = shared.ViewURL
		} else {
			record.ViewURL = shared.PDFURL
		}
		record.AuthKey = shared.AuthKey
	}

	record.BaseURL = data.BaseURL

	record.UserRef = nil
	record.UserKey = nil
	if data.User != nil {
		record.UserRef = data.User.ID
		record.UserKey = data.User.LoginTimeToken
	}

	record.Error = nil
	record.Status = models.StatusSynced

	if err := s.store.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist reconciled record")
	}
	return record, nil
}

// getOrCreate finds the record for a submission reference or inserts a bare
// PENDING shell. A concurrent insert losing the unique-constraint race falls
// back to reading the winner row.
func (s *SyncService) getOrCreate(ctx context.Context, sub *dto.HostSubmission) (*models.Submission, error) {
	record, err := s.store.GetBySubmissionRef(ctx, sub.Ref)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission record")
	}
	if record != nil {
		return record, nil
	}

	record = &models.Submission{
		SubmissionRef: sub.Ref,
		AssignmentRef: sub.AssignmentRef,
		Status:        models.StatusPending,
	}
	if _, err := s.store.Insert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			winner, readErr := s.store.GetBySubmissionRef(ctx, sub.Ref)
			if readErr != nil || winner == nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve concurrent record creation")
			}
			return winner, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission record")
	}
	return record, nil
}

func (s *SyncService) buildInitRequest(ctx context.Context, sub *dto.HostSubmission, actor *models.APIClaims, record *models.Submission, info *models.AssignmentContext) dto.InitAssignmentRequest {
	if info == nil {
		info = &models.AssignmentContext{ID: sub.AssignmentRef}
	}

	taskTitle := info.Name
	if taskTitle == "" {
		taskTitle = fmt.Sprintf("%d", info.ID)
	}
	intro := ""
	if info.Intro != nil {
		intro = *info.Intro
	}
	taskText := intro
	if info.Activity != nil && *info.Activity != "" {
		taskText = *info.Activity
	}
	finishedAt := info.DueDate
	if finishedAt == nil {
		finishedAt = info.GradingDueDate
	}

	courseTitle := info.CourseFullName
	if courseTitle == "" {
		courseTitle = info.CourseShortName
	}
	courseText := ""
	if info.CourseSummary != nil {
		courseText = *info.CourseSummary
	}

	user := dto.InitUser{ExternalID: sub.UserRef}
	if actor != nil {
		user.Email = actor.Email
		user.FirstName = actor.FirstName
		user.LastName = actor.LastName
	}

	return dto.InitAssignmentRequest{
		Meta: dto.InitMeta{
			CallbackURL: s.cfg.CallbackURL,
			Moodle:      s.cfg.PlatformVersion,
			Plugin:      s.cfg.PluginVersion,
		},
		User:     user,
		TaskUser: dto.InitTaskUser{ExternalID: record.ID},
		Task: dto.InitTask{
			ExternalID:  info.ID,
			Title:       taskTitle,
			Text:        taskText,
			Description: intro,
			StartedAt:   info.AllowSubmissionsFrom,
			FinishedAt:  finishedAt,
		},
		Course: dto.InitCourse{
			ExternalID: info.CourseRef,
			Title:      courseTitle,
			Text:       courseText,
			StartedAt:  info.CourseStartDate,
			FinishedAt: info.CourseEndDate,
			Setting:    s.settings.CheckSettings(ctx, sub.AssignmentRef),
		},
	}
}

// assignmentContext reads the join through the cache when one is configured.
func (s *SyncService) assignmentContext(ctx context.Context, assignmentRef int64) (*models.AssignmentContext, error) {
	key := fmt.Sprintf("edulegit:assignment_context:%d", assignmentRef)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("assignment context cache read failed", zap.Error(err))
		} else if cached != "" {
			var info models.AssignmentContext
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return &info, nil
			}
		}
	}

	info, err := s.store.GetAssignmentContext(ctx, assignmentRef)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && info != nil {
		if encoded, err := json.Marshal(info); err == nil {
			ttl := s.cfg.ContextCacheTTL
			if ttl <= 0 {
				ttl = 5 * time.Minute
			}
			if err := s.cache.Set(ctx, key, string(encoded), ttl); err != nil {
				s.logger.Warn("assignment context cache write failed", zap.Error(err))
			}
		}
	}
	return info, nil
}

func remoteErrorText(envelope *dto.RemoteEnvelope, resp *client.Response) string {
	if envelope != nil && envelope.Error != nil && *envelope.Error != "" {
		return *envelope.Error
	}
	if resp.TransportErr != "" {
		return resp.TransportErr
	}
	return genericRemoteError
}
