package ai

import (
	"context"
	"fmt"
	"strings"
)

// Tier is a cost/capability class of the conversational model.
type Tier string

const (
	// TierFast is the cheap tier used for enrichment, summaries and reports.
	TierFast Tier = "fast"
	// TierDeep is the expensive tier an admin may select for the interview itself.
	TierDeep Tier = "deep"
)

// Tiers returns every known tier in a stable order.
func Tiers() []Tier {
	return []Tier{TierFast, TierDeep}
}

func (t Tier) Valid() bool {
	return t == TierFast || t == TierDeep
}

// ParseTier accepts the tier name in any case. Empty input selects TierFast.
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TierFast, nil
	}
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown model tier %q", s)
	}
	return t, nil
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Attachment is a binary payload sent inline with a message.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Message is a single entry of an explicit conversation history.
type Message struct {
	Role       Role
	Text       string
	Attachment *Attachment
}

// Grounding selects an optional live data source for a request.
type Grounding int

const (
	GroundingNone Grounding = iota
	GroundingMaps
	GroundingSearch
)

// Citation is a source the model consulted while grounding its answer.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Response struct {
	Text      string
	Citations []Citation
}

// ChatRequest carries everything needed for one conversational turn. The model
// keeps no state between requests: the directive and history are resent every time.
type ChatRequest struct {
	Tier        Tier
	Directive   string
	History     []Message
	Message     string
	Temperature float32
	Grounding   Grounding
}

// GenerateRequest is a single-shot prompt, optionally constrained by a schema.
type GenerateRequest struct {
	Tier      Tier
	Prompt    string
	Schema    *Schema
	Grounding Grounding
}

// Chatter is the conversational model capability.
type Chatter interface {
	SendMessage(ctx context.Context, req ChatRequest) (*Response, error)
}

// Generator is the single-shot (optionally structured) model capability.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Response, error)
}
