package interview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type scriptedReply struct {
	text string
	err  error
}

type fakeChat struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []ai.ChatRequest
	block    chan struct{}
}

func (f *fakeChat) SendMessage(_ context.Context, req ai.ChatRequest) (*ai.Response, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return &ai.Response{Text: "Next question."}, nil
	}

	next := f.replies[0]
	f.replies = f.replies[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &ai.Response{Text: next.text}, nil
}

func (f *fakeChat) lastRequest(t *testing.T) ai.ChatRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type fakeQuota struct {
	mu      sync.Mutex
	left    int
	consume []ai.Tier
}

func (f *fakeQuota) CheckAndConsume(_ context.Context, tier ai.Tier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.left <= 0 {
		return failure.QuotaExceeded(tier)
	}
	f.left--
	f.consume = append(f.consume, tier)
	return nil
}

type fakeLocation struct {
	text    string
	err     error
	queries []string
}

func (f *fakeLocation) Fetch(_ context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	return f.text, f.err
}

func testConfig(t *testing.T, mutate func(*job.Draft)) *job.Configuration {
	t.Helper()

	d := job.Draft{CompanyName: "Acme", JobTitle: "Backend Engineer"}
	if mutate != nil {
		mutate(&d)
	}

	cfg, err := job.New(d)
	require.NoError(t, err)
	return cfg
}

func fixedClock() func() time.Time {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTestOrchestrator(t *testing.T, cfg *job.Configuration, deps Deps) *Orchestrator {
	t.Helper()
	if deps.Now == nil {
		deps.Now = fixedClock()
	}
	o, err := New(cfg, deps)
	require.NoError(t, err)
	return o
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := testConfig(t, nil)

	_, err := New(nil, Deps{Chat: &fakeChat{}, Quota: &fakeQuota{}})
	assert.Error(t, err)

	_, err = New(cfg, Deps{Quota: &fakeQuota{}})
	assert.Error(t, err)

	_, err = New(cfg, Deps{Chat: &fakeChat{}})
	assert.Error(t, err)
}

func TestInitializeSendsBootstrapAndDirective(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{{text: "Hi Ana, I'm Tom from Acme."}}}
	quota := &fakeQuota{left: 10}
	cfg := testConfig(t, func(d *job.Draft) {
		d.Language = "Spanish"
		d.Tier = "deep"
	})

	o := newTestOrchestrator(t, cfg, Deps{Chat: chat, Quota: quota})
	assert.NotEmpty(t, o.ID())
	assert.Equal(t, StateNew, o.State())

	turn, err := o.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RoleInterviewer, turn.Role)
	assert.Equal(t, "Hi Ana, I'm Tom from Acme.", turn.Text)
	assert.Equal(t, StateActive, o.State())
	assert.Equal(t, []ai.Tier{ai.TierDeep}, quota.consume)

	req := chat.lastRequest(t)
	assert.Equal(t, prompt.Bootstrap(job.Spanish), req.Message)
	assert.Equal(t, prompt.Compose(cfg, ""), req.Directive)
	assert.Equal(t, ai.TierDeep, req.Tier)
	assert.InDelta(t, 0.7, req.Temperature, 0.0001)
	assert.Empty(t, req.History)

	_, err = o.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestInitializeSeedsResumeHistory(t *testing.T) {
	chat := &fakeChat{}
	cfg := testConfig(t, func(d *job.Draft) {
		d.ResumeFile = &job.ResumeFile{MIMEType: "application/pdf", Data: "JVBERi0xLjQ="}
	})

	o := newTestOrchestrator(t, cfg, Deps{Chat: chat, Quota: &fakeQuota{left: 5}})
	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	req := chat.lastRequest(t)
	require.Len(t, req.History, 2)

	assert.Equal(t, ai.RoleUser, req.History[0].Role)
	assert.Equal(t, prompt.ResumeInstruction, req.History[0].Text)
	require.NotNil(t, req.History[0].Attachment)
	assert.Equal(t, "application/pdf", req.History[0].Attachment.MIMEType)
	assert.Equal(t, []byte("%PDF-1.4"), req.History[0].Attachment.Data)

	assert.Equal(t, ai.RoleModel, req.History[1].Role)
	assert.Equal(t, prompt.ResumeAcknowledgement, req.History[1].Text)
}

func TestInitializeUsesLocationContext(t *testing.T) {
	chat := &fakeChat{}
	loc := &fakeLocation{text: "Ten minutes from the central station."}
	cfg := testConfig(t, func(d *job.Draft) { d.OfficeLocation = "Main St 1" })

	o := newTestOrchestrator(t, cfg, Deps{Chat: chat, Quota: &fakeQuota{left: 5}, Location: loc})
	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Main St 1"}, loc.queries)
	assert.Contains(t, chat.lastRequest(t).Directive, "Ten minutes from the central station.")
}

func TestInitializeSkipsLocationWithoutAddress(t *testing.T) {
	loc := &fakeLocation{text: "unused"}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: &fakeChat{}, Quota: &fakeQuota{left: 5}, Location: loc})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loc.queries)
}

func TestInitializeContinuesWhenLocationQuotaExceeded(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	chat := &fakeChat{}
	loc := &fakeLocation{err: failure.QuotaExceeded(ai.TierFast)}
	cfg := testConfig(t, func(d *job.Draft) { d.OfficeLocation = "Main St 1" })

	o := newTestOrchestrator(t, cfg, Deps{Chat: chat, Quota: &fakeQuota{left: 5}, Location: loc, Logger: zap.New(core)})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateActive, o.State())
	assert.Contains(t, chat.lastRequest(t).Directive, "No office location context available.")
	assert.Equal(t, 1, logs.FilterMessageSnippet("location quota exceeded").Len())
}

func TestInitializeQuotaExceeded(t *testing.T) {
	chat := &fakeChat{}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{}})

	_, err := o.Initialize(context.Background())
	require.Error(t, err)

	assert.True(t, failure.IsQuota(err))
	assert.Equal(t, ai.TierFast, failure.TierOf(err))
	assert.Empty(t, chat.requests)
	assert.Empty(t, o.Turns())
	assert.Equal(t, StateFailed, o.State())
}

func TestInitializeTransportFailure(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{{err: errors.New("dial tcp: i/o timeout")}}}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{left: 5}})

	_, err := o.Initialize(context.Background())
	require.Error(t, err)

	assert.Equal(t, failure.KindInitialization, failure.KindOf(err))
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.Equal(t, StateFailed, o.State())

	_, err = o.SendCandidateMessage(context.Background(), "hello?")
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestInitializeEmptyReplyBecomesPlaceholder(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{{text: "  "}}}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{left: 5}})

	turn, err := o.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Placeholder, turn.Text)
}

func TestConversationRunsToCompletion(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{
		{text: "Hi Ana, I'm Tom. Tell me about yourself."},
		{text: "What databases have you used?"},
		{text: "Any questions for me?"},
		{text: "Thanks for your time. We'll be in touch. INTERVIEW_COMPLETE"},
	}}

	var (
		calls     int
		delivered []Turn
	)
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{
		Chat:  chat,
		Quota: &fakeQuota{left: 10},
		OnComplete: func(turns []Turn) {
			calls++
			delivered = turns
		},
	})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	reply, err := o.SendCandidateMessage(context.Background(), "  I build APIs in Go.  ")
	require.NoError(t, err)
	assert.Equal(t, "I build APIs in Go.", reply.Candidate.Text)
	require.NotNil(t, reply.Interviewer)
	assert.Equal(t, "What databases have you used?", reply.Interviewer.Text)
	assert.False(t, reply.Completed)

	req := chat.lastRequest(t)
	assert.Equal(t, "I build APIs in Go.", req.Message)
	require.Len(t, req.History, 2)
	assert.Equal(t, ai.RoleModel, req.History[1].Role)
	assert.Equal(t, "Hi Ana, I'm Tom. Tell me about yourself.", req.History[1].Text)

	_, err = o.SendCandidateMessage(context.Background(), "Postgres mostly.")
	require.NoError(t, err)

	reply, err = o.SendCandidateMessage(context.Background(), "No, thank you.")
	require.NoError(t, err)
	assert.True(t, reply.Completed)
	require.NotNil(t, reply.Interviewer)
	assert.Equal(t, "Thanks for your time. We'll be in touch.", reply.Interviewer.Text)

	assert.Equal(t, StateCompleted, o.State())
	assert.Equal(t, 1, calls)
	require.Len(t, delivered, 7)
	assert.Equal(t, RoleCandidate, delivered[5].Role)
	assert.Equal(t, "Thanks for your time. We'll be in touch.", delivered[6].Text)
	for _, turn := range delivered {
		assert.NotContains(t, turn.Text, prompt.Sentinel)
	}

	_, err = o.SendCandidateMessage(context.Background(), "Hello?")
	assert.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, 1, calls)
}

func TestSentinelOnlyReplyAddsNoTurn(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{
		{text: "Welcome."},
		{text: "  INTERVIEW_COMPLETE  "},
	}}
	done := 0
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{
		Chat:       chat,
		Quota:      &fakeQuota{left: 5},
		OnComplete: func([]Turn) { done++ },
	})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	reply, err := o.SendCandidateMessage(context.Background(), "Bye.")
	require.NoError(t, err)

	assert.True(t, reply.Completed)
	assert.Nil(t, reply.Interviewer)
	assert.Len(t, o.Turns(), 2)
	assert.Equal(t, 1, done)
}

func TestSendQuotaExceededLeavesLogUntouched(t *testing.T) {
	chat := &fakeChat{}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{left: 1}})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	_, err = o.SendCandidateMessage(context.Background(), "My answer.")
	require.Error(t, err)

	assert.True(t, failure.IsQuota(err))
	assert.Len(t, o.Turns(), 1)
	assert.Len(t, chat.requests, 1)
	assert.Equal(t, StateActive, o.State())
}

func TestSendTransportFailureAppendsPlaceholder(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{
		{text: "Tell me about yourself."},
		{err: errors.New("connection reset")},
		{text: "Great, thanks."},
	}}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{left: 5}})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	reply, err := o.SendCandidateMessage(context.Background(), "I am Ana.")
	require.Error(t, err)
	assert.Equal(t, failure.KindTransport, failure.KindOf(err))
	require.NotNil(t, reply.Interviewer)
	assert.Equal(t, Placeholder, reply.Interviewer.Text)

	turns := o.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, RoleCandidate, turns[1].Role)
	assert.Equal(t, Placeholder, turns[2].Text)

	_, err = o.SendCandidateMessage(context.Background(), "I am Ana.")
	require.NoError(t, err)

	// the failed exchange never reached the model history
	req := chat.lastRequest(t)
	assert.Len(t, req.History, 2)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: &fakeChat{}, Quota: &fakeQuota{left: 5}})
	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	_, err = o.SendCandidateMessage(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, o.Turns(), 1)
}

func TestSendBeforeInitialize(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: &fakeChat{}, Quota: &fakeQuota{left: 5}})

	_, err := o.SendCandidateMessage(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestOverlappingSendIsRejected(t *testing.T) {
	chat := &fakeChat{}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{left: 5}})
	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	chat.block = make(chan struct{})
	errs := make(chan error, 1)
	go func() {
		_, err := o.SendCandidateMessage(context.Background(), "first")
		errs <- err
	}()

	require.Eventually(t, func() bool {
		return len(o.Turns()) == 2
	}, time.Second, 5*time.Millisecond)

	_, err = o.SendCandidateMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(chat.block)
	require.NoError(t, <-errs)

	for _, turn := range o.Turns() {
		assert.False(t, strings.Contains(turn.Text, "second"))
	}
}

func TestSentinelInsideReplyKeepsSingleSpace(t *testing.T) {
	chat := &fakeChat{replies: []scriptedReply{
		{text: "Hola."},
		{text: "Gracias. INTERVIEW_COMPLETE Adiós"},
	}}
	o := newTestOrchestrator(t, testConfig(t, nil), Deps{Chat: chat, Quota: &fakeQuota{left: 5}})

	_, err := o.Initialize(context.Background())
	require.NoError(t, err)

	reply, err := o.SendCandidateMessage(context.Background(), "No tengo más preguntas")
	require.NoError(t, err)

	require.True(t, reply.Completed)
	require.NotNil(t, reply.Interviewer)
	assert.Equal(t, "Gracias. Adiós", reply.Interviewer.Text)
}

func TestStripSentinel(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{reply: "INTERVIEW_COMPLETE", want: ""},
		{reply: "  INTERVIEW_COMPLETE \n", want: ""},
		{reply: "Thank you! INTERVIEW_COMPLETE", want: "Thank you!"},
		{reply: "Bye.INTERVIEW_COMPLETE", want: "Bye."},
		{reply: "Gracias. INTERVIEW_COMPLETE Adiós", want: "Gracias. Adiós"},
		{reply: "Gracias.\tINTERVIEW_COMPLETE   Adiós", want: "Gracias. Adiós"},
		{reply: "Thanks!\nINTERVIEW_COMPLETE\nGood luck.", want: "Thanks!\n\nGood luck."},
		{reply: "A INTERVIEW_COMPLETE B INTERVIEW_COMPLETE", want: "A B"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripSentinel(tt.reply), "reply %q", tt.reply)
	}
}
