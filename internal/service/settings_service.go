package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/pkg/config"
)

// Setting names shared with the host platform's plugin configuration.
const (
	SettingEnablePlagiarism = "enable_plagiarism"
	SettingEnableAI         = "enable_ai"
	SettingEnableScreen     = "enable_screen"
	SettingEnableCamera     = "enable_camera"
	SettingEnableAttention  = "enable_attention"
)

type pluginConfigReader interface {
	GetAssignment(ctx context.Context, assignmentRef int64, name string) (*string, error)
	GetGlobal(ctx context.Context, name string) (*string, error)
}

// SettingsService resolves feature toggles with assignment-override →
// global-row → built-in-default precedence. Lookups are presence-aware: an
// override explicitly set to "0" wins over a global "1".
type SettingsService struct {
	repo     pluginConfigReader
	defaults config.ChecksConfig
	logger   *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo pluginConfigReader, defaults config.ChecksConfig, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, defaults: defaults, logger: logger}
}

// Bool resolves a named toggle for an assignment. Lookup failures fall back
// to the built-in default rather than failing the caller.
func (s *SettingsService) Bool(ctx context.Context, assignmentRef int64, name string) bool {
	if value, err := s.repo.GetAssignment(ctx, assignmentRef, name); err != nil {
		s.logger.Warn("assignment setting lookup failed", zap.String("name", name), zap.Error(err))
	} else if value != nil {
		return parseBool(*value)
	}

	if value, err := s.repo.GetGlobal(ctx, name); err != nil {
		s.logger.Warn("global setting lookup failed", zap.String("name", name), zap.Error(err))
	} else if value != nil {
		return parseBool(*value)
	}

	return s.builtinDefault(name)
}

// CheckSettings resolves the six registration toggles for an assignment.
// mustRecordEvents follows the plagiarism toggle, matching what the
// EduLegit protocol expects.
func (s *SettingsService) CheckSettings(ctx context.Context, assignmentRef int64) dto.InitSettings {
	plagiarism := s.Bool(ctx, assignmentRef, SettingEnablePlagiarism)
	return dto.InitSettings{
		AutoPlagiarismCheck:       plagiarism,
		AutoAiCheck:               s.Bool(ctx, assignmentRef, SettingEnableAI),
		MustRecordEvents:          plagiarism,
		MustRecordScreen:          s.Bool(ctx, assignmentRef, SettingEnableScreen),
		MustRecordCamera:          s.Bool(ctx, assignmentRef, SettingEnableCamera),
		MustRecognizeAttentionMap: s.Bool(ctx, assignmentRef, SettingEnableAttention),
	}
}

func (s *SettingsService) builtinDefault(name string) bool {
	switch name {
	case SettingEnablePlagiarism:
		return s.defaults.Plagiarism
	case SettingEnableAI:
		return s.defaults.AI
	case SettingEnableScreen:
		return s.defaults.Screen
	case SettingEnableCamera:
		return s.defaults.Camera
	case SettingEnableAttention:
		return s.defaults.Attention
	default:
		return false
	}
}

func parseBool(value string) bool {
	switch value {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
