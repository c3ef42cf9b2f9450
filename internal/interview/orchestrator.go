// Package interview drives one candidate's conversation with the interviewer model.
package interview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/logger"
	"github.com/spigell/recruitai/internal/prompt"
	"go.uber.org/zap"
)

const (
	// Placeholder stands in for an interviewer reply that never arrived.
	Placeholder = "..."
	temperature = 0.7
)

var (
	ErrBusy           = errors.New("a reply is still pending")
	ErrNotActive      = errors.New("interview session is not active")
	ErrAlreadyStarted = errors.New("interview session already started")
	ErrEmptyMessage   = errors.New("message must not be empty")
)

// Quota is the part of the ledger the orchestrator needs.
type Quota interface {
	CheckAndConsume(ctx context.Context, tier ai.Tier) error
}

// LocationFetcher describes an office location for the directive.
type LocationFetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

type Deps struct {
	Chat  ai.Chatter
	Quota Quota
	// Location is optional.
	Location LocationFetcher
	Logger   *zap.Logger
	Now      func() time.Time
	// OnComplete receives the full turn log once the interviewer ends the session.
	OnComplete func(turns []Turn)
}

// Reply is the outcome of one candidate message.
type Reply struct {
	Candidate Turn
	// Interviewer is nil when the final reply carried only the sentinel.
	Interviewer *Turn
	Completed   bool
}

// Orchestrator owns one conversation session. The model-facing history is kept
// here explicitly and resent on every call.
type Orchestrator struct {
	id     string
	cfg    *job.Configuration
	chat   ai.Chatter
	quota  Quota
	loc    LocationFetcher
	logger *zap.Logger
	now    func() time.Time

	onComplete func([]Turn)
	completed  sync.Once

	// call admits a single model exchange at a time.
	call sync.Mutex

	mu        sync.RWMutex
	state     State
	turns     []Turn
	history   []ai.Message
	directive string
}

func New(cfg *job.Configuration, deps Deps) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("job configuration is required")
	}
	if deps.Chat == nil {
		return nil, errors.New("chat model is required")
	}
	if deps.Quota == nil {
		return nil, errors.New("quota ledger is required")
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	id := uuid.NewString()

	return &Orchestrator{
		id:         id,
		cfg:        cfg,
		chat:       deps.Chat,
		quota:      deps.Quota,
		loc:        deps.Location,
		logger:     logger.WithSessionFields(deps.Logger, id, string(cfg.Tier), string(cfg.Language)),
		now:        now,
		onComplete: deps.OnComplete,
		state:      StateNew,
	}, nil
}

func (o *Orchestrator) ID() string {
	return o.id
}

func (o *Orchestrator) Config() *job.Configuration {
	return o.cfg
}

func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Turns returns a copy of the conversation log.
func (o *Orchestrator) Turns() []Turn {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return cloneTurns(o.turns)
}

// Initialize starts the session and returns the interviewer's opening turn.
// A quota failure is returned unchanged; any other failure is an
// initialization error and leaves the session failed.
func (o *Orchestrator) Initialize(ctx context.Context) (Turn, error) {
	if !o.call.TryLock() {
		return Turn{}, ErrBusy
	}
	defer o.call.Unlock()

	if o.State() != StateNew {
		return Turn{}, ErrAlreadyStarted
	}

	o.logger.Info("starting interview session")

	directive := prompt.Compose(o.cfg, o.locationContext(ctx))
	history := o.seedHistory()

	if err := o.quota.CheckAndConsume(ctx, o.cfg.Tier); err != nil {
		o.setState(StateFailed)
		return Turn{}, failure.Initialization("check quota", err)
	}

	opening := prompt.Bootstrap(o.cfg.Language)

	resp, err := o.chat.SendMessage(ctx, ai.ChatRequest{
		Tier:        o.cfg.Tier,
		Directive:   directive,
		History:     history,
		Message:     opening,
		Temperature: temperature,
	})
	if err != nil {
		o.setState(StateFailed)
		o.logger.Error("interview could not be started", zap.Error(err))
		return Turn{}, failure.Initialization("send opening message", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = Placeholder
	}

	o.mu.Lock()
	o.directive = directive
	o.history = append(history,
		ai.Message{Role: ai.RoleUser, Text: opening},
		ai.Message{Role: ai.RoleModel, Text: text},
	)
	turn := o.appendLocked(RoleInterviewer, text)
	o.state = StateActive
	o.mu.Unlock()

	return turn, nil
}

// SendCandidateMessage relays one candidate answer. The candidate turn is
// appended as soon as quota is granted. On a transport failure a placeholder
// interviewer turn is appended and the model history is left untouched, so
// the candidate can simply resend.
func (o *Orchestrator) SendCandidateMessage(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	if !o.call.TryLock() {
		return Reply{}, ErrBusy
	}
	defer o.call.Unlock()

	if o.State() != StateActive {
		return Reply{}, ErrNotActive
	}

	if err := o.quota.CheckAndConsume(ctx, o.cfg.Tier); err != nil {
		return Reply{}, failure.Transport("check quota", err)
	}

	o.mu.Lock()
	candidate := o.appendLocked(RoleCandidate, text)
	history := append([]ai.Message(nil), o.history...)
	directive := o.directive
	o.mu.Unlock()

	resp, err := o.chat.SendMessage(ctx, ai.ChatRequest{
		Tier:        o.cfg.Tier,
		Directive:   directive,
		History:     history,
		Message:     text,
		Temperature: temperature,
	})
	if err != nil {
		o.logger.Warn("interviewer reply failed", zap.Error(err))

		o.mu.Lock()
		placeholder := o.appendLocked(RoleInterviewer, Placeholder)
		o.mu.Unlock()

		return Reply{Candidate: candidate, Interviewer: &placeholder}, failure.Transport("send candidate message", err)
	}

	reply := strings.TrimSpace(resp.Text)

	if strings.Contains(reply, prompt.Sentinel) {
		return o.finish(candidate, text, reply), nil
	}

	if reply == "" {
		reply = Placeholder
	}

	o.mu.Lock()
	o.history = append(o.history,
		ai.Message{Role: ai.RoleUser, Text: text},
		ai.Message{Role: ai.RoleModel, Text: reply},
	)
	turn := o.appendLocked(RoleInterviewer, reply)
	o.mu.Unlock()

	return Reply{Candidate: candidate, Interviewer: &turn}, nil
}

// finish strips the sentinel, appends the closing remark if anything is left
// and signals completion.
func (o *Orchestrator) finish(candidate Turn, text, reply string) Reply {
	closing := stripSentinel(reply)

	out := Reply{Candidate: candidate, Completed: true}

	o.mu.Lock()
	o.history = append(o.history,
		ai.Message{Role: ai.RoleUser, Text: text},
		ai.Message{Role: ai.RoleModel, Text: reply},
	)
	if closing != "" {
		turn := o.appendLocked(RoleInterviewer, closing)
		out.Interviewer = &turn
	}
	o.state = StateCompleted
	turns := cloneTurns(o.turns)
	o.mu.Unlock()

	o.logger.Info("interview completed", zap.Int("turns", len(turns)))

	o.completed.Do(func() {
		if o.onComplete != nil {
			o.onComplete(turns)
		}
	})

	return out
}

// stripSentinel removes every sentinel token together with the blanks around
// it, keeping one space between the words it separated.
func stripSentinel(reply string) string {
	parts := strings.Split(reply, prompt.Sentinel)

	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			part = strings.TrimLeft(part, " \t")
		}
		if i < len(parts)-1 {
			part = strings.TrimRight(part, " \t")
		}
		if i > 0 && part != "" && b.Len() > 0 &&
			!strings.HasSuffix(b.String(), "\n") && !strings.HasPrefix(part, "\n") {
			b.WriteByte(' ')
		}
		b.WriteString(part)
	}

	return strings.TrimSpace(b.String())
}

func (o *Orchestrator) locationContext(ctx context.Context) string {
	if o.loc == nil || strings.TrimSpace(o.cfg.OfficeLocation) == "" {
		return ""
	}

	text, err := o.loc.Fetch(ctx, o.cfg.OfficeLocation)
	if err != nil {
		if failure.IsQuota(err) {
			o.logger.Warn("location quota exceeded, proceeding without location context")
		} else {
			o.logger.Warn("location lookup failed, proceeding without location context", zap.Error(err))
		}
		return ""
	}

	return text
}

// seedHistory prepends a synthetic exchange in which the model has already
// reviewed the attached resume.
func (o *Orchestrator) seedHistory() []ai.Message {
	if o.cfg.Resume == nil {
		return nil
	}

	return []ai.Message{
		{
			Role:       ai.RoleUser,
			Text:       prompt.ResumeInstruction,
			Attachment: &ai.Attachment{MIMEType: o.cfg.Resume.MIMEType, Data: o.cfg.Resume.Data},
		},
		{Role: ai.RoleModel, Text: prompt.ResumeAcknowledgement},
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) appendLocked(role Role, text string) Turn {
	turn := Turn{Role: role, Text: text, Time: o.now()}
	o.turns = append(o.turns, turn)
	o.logger.Debug("turn appended", zap.String("role", string(role)), zap.Int("turn", len(o.turns)))
	return turn
}
