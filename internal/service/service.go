package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/directory"
	"github.com/badal-community/backend/internal/discord"
	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/identity"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/pkg/auth"
	"github.com/badal-community/backend/pkg/hash"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer is the slice of the queue client the services need to hand off
// outbound email tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Services struct {
	Form   Form
	Sweeps Sweeps
	Admin  Admin
}

type Deps struct {
	Config       *config.Config
	Repos        *repository.Repositories
	Directory    *directory.Directory
	Identity     identity.Verifier
	Discord      *discord.Client
	Hasher       hash.PasswordHasher
	TokenManager auth.TokenManager
	Queue        Enqueuer
	TxSupported  bool
}

func NewServices(deps Deps) *Services {
	form := newFormService(deps)

	return &Services{
		Form:   form,
		Sweeps: newSweepService(deps),
		Admin:  newAdminService(deps),
	}
}

// Activation is the outcome of opening (or reopening) a link.
type Activation struct {
	ActivatedAt time.Time
	ExpiresAt   time.Time
}

// Validation is the read-only answer of Validate. Reason is set only when
// Valid is false.
type Validation struct {
	Valid  bool
	Reason string
}

// OrgReference is the typed organization pointer a submission carries.
type OrgReference struct {
	Type domain.OrgRefType
	ID   string
	Name string
}

// SubmitInput is the full submit payload after HTTP-level shape validation.
type SubmitInput struct {
	LinkToken     string
	ProviderToken string
	FullName      string
	Email         string
	Phone         string
	GithubURL     *string
	OrgRef        OrgReference
	Source        string
	City          *string
	TechStack     []string
}

// SubmitResult reports the id of the mirrored directory record.
type SubmitResult struct {
	ExternalUserID string
}

// Form is the token lifecycle engine.
type Form interface {
	Activate(ctx context.Context, linkToken string) (*Activation, error)
	Validate(ctx context.Context, linkToken string) (*Validation, error)
	VerifyPhone(ctx context.Context, linkToken, claimedPhone, providerToken string) error
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Defer(ctx context.Context, linkToken string) error
	OptOut(ctx context.Context, linkToken string, reason *string) error
	SaveDraft(ctx context.Context, linkToken string, payload json.RawMessage) error
	GetDraft(ctx context.Context, linkToken string) (*domain.Draft, error)
	DeleteDraft(ctx context.Context, linkToken string) error
	BeginOAuth(ctx context.Context, linkToken, state string) (string, error)
	CompleteOAuth(ctx context.Context, linkToken, code string) (bool, error)
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	Processed int
	Deferred  int
	Absorbed  int
	Resent    int
	Skipped   int
	Errors    int
}

// Sweeps are the scheduled batch operations over tokens and deferrals.
type Sweeps interface {
	RunNeverOpened(ctx context.Context) (*SweepStats, error)
	RunStaleActivation(ctx context.Context) (*SweepStats, error)
	RunDeferredResend(ctx context.Context) (*SweepStats, error)
	RunRetention(ctx context.Context) (int64, error)
}

type Admin interface {
	Login(ctx context.Context, email, password string) (string, time.Duration, error)
	InviteRecipient(ctx context.Context, recipientID uuid.UUID) error
	EmailLog(ctx context.Context, limit int) ([]domain.EmailLogEntry, error)
}
