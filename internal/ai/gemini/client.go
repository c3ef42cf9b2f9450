package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/logger"
	"github.com/spigell/recruitai/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	provider = "gemini"

	defaultFastModel    = "gemini-3-flash-preview"
	defaultDeepModel    = "gemini-3-pro-preview"
	defaultMaxLogLength = 200
	defaultCitation     = "Source"
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkChats struct {
	chats *genai.Chats
}

func (s sdkChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := s.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Config selects the models used for each tier.
type Config struct {
	APIKey       string
	Models       map[ai.Tier]string
	MaxLogLength int
}

// Client implements ai.Chatter and ai.Generator on top of the Gemini API.
// It keeps no conversation state: every chat call builds a fresh SDK chat from
// the explicit history in the request.
type Client struct {
	chats     chatCreator
	models    contentGenerator
	names     map[ai.Tier]string
	logger    *zap.Logger
	maxLogLen int
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(sdkChats{chats: client.Chats}, client.Models, cfg, log), nil
}

func newClient(chats chatCreator, models contentGenerator, cfg Config, log *zap.Logger) *Client {
	names := map[ai.Tier]string{
		ai.TierFast: defaultFastModel,
		ai.TierDeep: defaultDeepModel,
	}
	for tier, name := range cfg.Models {
		if name = strings.TrimSpace(name); name != "" {
			names[tier] = name
		}
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Client{
		chats:     chats,
		models:    models,
		names:     names,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLen,
	}
}

// Model returns the model name serving tier.
func (c *Client) Model(tier ai.Tier) string {
	if name, ok := c.names[tier]; ok {
		return name
	}
	return c.names[ai.TierFast]
}

// SendMessage sends one message on top of the explicit history and returns the reply.
func (c *Client) SendMessage(ctx context.Context, req ai.ChatRequest) (*ai.Response, error) {
	if c == nil || c.chats == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errors.New("message must not be empty")
	}

	model := c.Model(req.Tier)
	log := logger.WithCommonFields(c.logger, provider, model)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.Directive)}},
		Tools:             tools(req.Grounding),
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}

	log.Debug("gemini chat request",
		zap.Int("history_length", len(req.History)),
		zap.Int("directive_length", utf8.RuneCountInString(req.Directive)),
		zap.String("message_preview", utils.TruncateForLog(message, c.maxLogLen)),
	)

	chat, err := c.chats.Create(ctx, model, config, toContents(req.History))
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		log.Debug("gemini chat failed", zap.Error(err))
		return nil, fmt.Errorf("send message: %w", err)
	}

	out := toResponse(resp)

	log.Debug("gemini chat response",
		zap.Int("response_length", utf8.RuneCountInString(out.Text)),
		zap.String("response_preview", utils.TruncateForLog(out.Text, c.maxLogLen)),
		zap.Int("citations", len(out.Citations)),
	)

	return out, nil
}

// Generate runs a single-shot prompt. With a schema the reply is JSON text.
func (c *Client) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.Response, error) {
	if c == nil || c.models == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	model := c.Model(req.Tier)
	log := logger.WithCommonFields(c.logger, provider, model)

	config := &genai.GenerateContentConfig{Tools: tools(req.Grounding)}
	structured := req.Schema != nil
	if structured && len(config.Tools) > 0 && !toolsWithSchema(model) {
		// the prompt still asks for JSON and callers validate it
		log.Debug("model does not combine built-in tools with a response schema, sending plain request")
		structured = false
	}
	if structured {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toSchema(req.Schema)
	}

	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
		zap.Bool("structured", structured),
	)

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		log.Debug("gemini generate content failed", zap.Error(err))
		return nil, fmt.Errorf("generate content: %w", err)
	}

	out := toResponse(resp)

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(out.Text)),
		zap.String("response_preview", utils.TruncateForLog(out.Text, c.maxLogLen)),
		zap.Int("citations", len(out.Citations)),
	)

	return out, nil
}

// toolsWithSchema reports whether model accepts a response schema together
// with Google Search or Maps. Only the Gemini 3 family does.
func toolsWithSchema(model string) bool {
	return strings.HasPrefix(strings.TrimPrefix(model, "models/"), "gemini-3")
}

func tools(g ai.Grounding) []*genai.Tool {
	switch g {
	case ai.GroundingMaps:
		return []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	case ai.GroundingSearch:
		return []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	default:
		return nil
	}
}

func toContents(history []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		parts := make([]*genai.Part, 0, 2)
		if msg.Attachment != nil {
			parts = append(parts, genai.NewPartFromBytes(msg.Attachment.Data, msg.Attachment.MIMEType))
		}
		if msg.Text != "" {
			parts = append(parts, genai.NewPartFromText(msg.Text))
		}

		role := genai.RoleUser
		if msg.Role == ai.RoleModel {
			role = genai.RoleModel
		}

		contents = append(contents, genai.NewContentFromParts(parts, genai.Role(role)))
	}
	return contents
}

func toSchema(s *ai.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s.Fields)),
	}

	for _, f := range s.Fields {
		var prop *genai.Schema
		switch f.Type {
		case ai.FieldNumber:
			prop = &genai.Schema{Type: genai.TypeNumber}
		case ai.FieldStringArray:
			prop = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
		default:
			prop = &genai.Schema{Type: genai.TypeString, Enum: f.Enum}
		}
		prop.Description = f.Description

		out.Properties[f.Name] = prop
		out.Required = append(out.Required, f.Name)
		out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
	}

	return out
}

// toResponse joins the text parts of every candidate and collects grounding sources.
func toResponse(resp *genai.GenerateContentResponse) *ai.Response {
	out := &ai.Response{Citations: []ai.Citation{}}
	if resp == nil {
		return out
	}

	var builder strings.Builder
	seen := make(map[string]struct{})

	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Thought {
					continue
				}
				text := strings.TrimSpace(part.Text)
				if text == "" {
					continue
				}
				if builder.Len() > 0 {
					builder.WriteString("\n")
				}
				builder.WriteString(text)
			}
		}

		if candidate.GroundingMetadata == nil {
			continue
		}

		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil {
				continue
			}

			var title, uri string
			switch {
			case chunk.Web != nil:
				title, uri = chunk.Web.Title, chunk.Web.URI
			case chunk.Maps != nil:
				title, uri = chunk.Maps.Title, chunk.Maps.URI
			}

			uri = strings.TrimSpace(uri)
			if uri == "" {
				continue
			}
			if _, ok := seen[uri]; ok {
				continue
			}
			seen[uri] = struct{}{}

			if title = strings.TrimSpace(title); title == "" {
				title = defaultCitation
			}
			out.Citations = append(out.Citations, ai.Citation{Title: title, URI: uri})
		}
	}

	out.Text = strings.TrimSpace(builder.String())
	return out
}
