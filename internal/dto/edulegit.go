package dto

// Wire types for the EduLegit init-moodle-assignment exchange. Field names
// follow the remote contract, not local conventions.

// InitAssignmentRequest registers a submission with EduLegit.
type InitAssignmentRequest struct {
	Meta     InitMeta     `json:"meta"`
	User     InitUser     `json:"user"`
	TaskUser InitTaskUser `json:"taskUser"`
	Task     InitTask     `json:"task"`
	Course   InitCourse   `json:"course"`
}

// InitMeta identifies the calling platform and where to deliver webhooks.
type InitMeta struct {
	CallbackURL string `json:"callbackUrl"`
	Moodle      string `json:"moodle"`
	Plugin      string `json:"plugin"`
}

// InitUser is the acting submitter's identity; all detail fields optional.
type InitUser struct {
	ExternalID int64   `json:"externalId"`
	Email      *string `json:"email"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
}

// InitTaskUser binds the remote task-user to the local record id.
type InitTaskUser struct {
	ExternalID int64 `json:"externalId"`
}

// InitTask mirrors the assignment being registered.
type InitTask struct {
	ExternalID  int64  `json:"externalId"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	Description string `json:"description"`
	StartedAt   *int64 `json:"startedAt"`
	FinishedAt  *int64 `json:"finishedAt"`
}

// InitCourse mirrors the parent course plus its check settings.
type InitCourse struct {
	ExternalID int64        `json:"externalId"`
	Title      string       `json:"title"`
	Text       string       `json:"text"`
	StartedAt  *int64       `json:"startedAt"`
	FinishedAt *int64       `json:"finishedAt"`
	Setting    InitSettings `json:"setting"`
}

// InitSettings are the six per-course feature toggles.
type InitSettings struct {
	AutoPlagiarismCheck       bool `json:"autoPlagiarismCheck"`
	AutoAiCheck               bool `json:"autoAiCheck"`
	MustRecordEvents          bool `json:"mustRecordEvents"`
	MustRecordScreen          bool `json:"mustRecordScreen"`
	MustRecordCamera          bool `json:"mustRecordCamera"`
	MustRecognizeAttentionMap bool `json:"mustRecognizeAttentionMap"`
}

// RemoteEnvelope is the response shape of every EduLegit API call.
type RemoteEnvelope struct {
	Success bool        `json:"success"`
	Data    *RemoteData `json:"data"`
	Error   *string     `json:"error"`
}

// RemoteData is the authoritative state snapshot used for reconciliation.
type RemoteData struct {
	BaseURL        *string               `json:"baseUrl"`
	Task           *RemoteTask           `json:"task"`
	TaskUser       *RemoteTaskUser       `json:"taskUser"`
	TaskDocument   *RemoteTaskDocument   `json:"taskDocument"`
	SharedDocument *RemoteSharedDocument `json:"sharedDocument"`
	User           *RemoteUser           `json:"user"`
}

type RemoteTask struct {
	ID *int64 `json:"id"`
}

type RemoteTaskUser struct {
	ID         *int64 `json:"id"`
	TaskID     *int64 `json:"taskId"`
	TaskUserID *int64 `json:"taskUserId"`
}

type RemoteTaskDocument struct {
	ID                   *int64   `json:"id"`
	Title                *string  `json:"title"`
	Content              *string  `json:"content"`
	Score                *float64 `json:"score"`
	Plagiarism           *float64 `json:"plagiarism"`
	AIAverageProbability *float64 `json:"aiAverageProbability"`
	AIProbability        *float64 `json:"aiProbability"`
}

type RemoteSharedDocument struct {
	ViewURL *string `json:"viewUrl"`
	PDFURL  *string `json:"pdfUrl"`
	AuthKey *string `json:"authKey"`
}

type RemoteUser struct {
	ID             *int64  `json:"id"`
	LoginTimeToken *string `json:"loginTimeToken"`
}
