package conversation

import (
	"ChatGateway/internal/ai"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ValidationError — отсутствует обязательный параметр запроса.
type ValidationError struct {
	Param string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q is required", e.Param)
}

// Options параметры сервиса диалогов.
type Options struct {
	ChatModel  string
	EmbedModel string
	// SerializePerUser — обрабатывать запросы одного uid строго по очереди.
	SerializePerUser bool
	// UpstreamTimeout — таймаут вызова провайдера; 0 — без таймаута.
	UpstreamTimeout time.Duration
}

// Service оркестрирует обмен: история → провайдер → история.
type Service struct {
	store   *Store
	gateway ai.Gateway
	opts    Options
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewService создаёт сервис. gateway может быть nil — тогда генерация отвечает ai.ErrNotConfigured.
func NewService(store *Store, gateway ai.Gateway, opts Options, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, gateway: gateway, opts: opts, logger: logger, now: time.Now}
}

type GenerateInput struct {
	Prompt   string
	UID      string
	ImageURL string
	Reset    bool
}

type GenerateResult struct {
	UID          string
	Prompt       string
	Response     string
	MessageCount int
	Exchanges    int
	ImageURL     string
	Timestamp    time.Time
}

type EmbedInput struct {
	Prompt string
	UID    string
}

type EmbedResult struct {
	UID       string
	Prompt    string
	Model     string
	Output    json.RawMessage
	Timestamp time.Time
}

// Endpoint описание одного маршрута для /info.
type Endpoint struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

type Info struct {
	API           string
	Status        string
	Provider      string
	ChatModel     string
	EmbedModel    string
	Configured    bool
	Endpoints     []Endpoint
	Conversations int
}

// ParseReset: сбросом считаются только "true" и "1".
func ParseReset(v string) bool {
	return v == "true" || v == "1"
}

// Generate выполняет один обмен с моделью. При любой ошибке история не меняется
// (кроме явно запрошенного сброса, который выполняется до обращения к модели).
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	if in.Prompt == "" {
		return GenerateResult{}, &ValidationError{Param: "prompt"}
	}
	if in.UID == "" {
		return GenerateResult{}, &ValidationError{Param: "uid"}
	}
	if s.gateway == nil {
		return GenerateResult{}, ai.ErrNotConfigured
	}
	if s.opts.SerializePerUser {
		unlock := s.store.Lock(in.UID)
		defer unlock()
	}

	if in.Reset {
		s.store.Delete(in.UID)
		s.logger.Infow("Conversation reset", "uid", in.UID)
	}
	history := s.store.GetOrCreate(in.UID)
	userMsg := BuildUserMessage(in.Prompt, in.ImageURL)
	messages := append(history, userMsg)

	callCtx := ctx
	if s.opts.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeoutCause(ctx, s.opts.UpstreamTimeout, errors.New("upstream timeout"))
		defer cancel()
	}
	start := time.Now()
	out, err := s.gateway.Run(callCtx, s.opts.ChatModel, messages)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("run %s: %w", s.gateway.Name(), err)
	}
	text, err := out.Normalize()
	if err != nil {
		return GenerateResult{}, err
	}

	res := GenerateResult{
		UID:       in.UID,
		Prompt:    in.Prompt,
		Response:  text,
		ImageURL:  in.ImageURL,
		Timestamp: s.now().UTC(),
	}
	count, err := s.store.AppendExchange(in.UID, userMsg, AssistantMessage(text))
	if err != nil {
		// Диалог сбросили параллельным запросом, пока ждали модель: ответ отдаём, в историю он не попадает.
		s.logger.Warnw("Exchange dropped: conversation was reset during upstream call",
			"uid", in.UID,
			"provider", s.gateway.Name(),
			"duration", time.Since(start).String(),
			"error", err,
		)
		return res, nil
	}
	s.logger.Infow("Exchange completed",
		"uid", in.UID,
		"provider", s.gateway.Name(),
		"sent", len(messages),
		"history", count,
		"duration", time.Since(start).String(),
	)

	res.MessageCount = count
	res.Exchanges = count / 2
	return res, nil
}

// Reset удаляет историю uid. Идемпотентна.
func (s *Service) Reset(uid string) error {
	if uid == "" {
		return &ValidationError{Param: "uid"}
	}
	if s.opts.SerializePerUser {
		unlock := s.store.Lock(uid)
		defer unlock()
	}
	s.store.Delete(uid)
	s.logger.Infow("Conversation reset", "uid", uid)
	return nil
}

// Embed считает эмбеддинг текста. История не затрагивается.
func (s *Service) Embed(ctx context.Context, in EmbedInput) (EmbedResult, error) {
	if in.Prompt == "" {
		return EmbedResult{}, &ValidationError{Param: "prompt"}
	}
	if in.UID == "" {
		return EmbedResult{}, &ValidationError{Param: "uid"}
	}
	if s.gateway == nil {
		return EmbedResult{}, ai.ErrNotConfigured
	}
	if s.opts.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.opts.UpstreamTimeout, errors.New("upstream timeout"))
		defer cancel()
	}
	out, err := s.gateway.Embed(ctx, s.opts.EmbedModel, in.Prompt)
	if err != nil {
		return EmbedResult{}, fmt.Errorf("embed %s: %w", s.gateway.Name(), err)
	}
	return EmbedResult{
		UID:       in.UID,
		Prompt:    in.Prompt,
		Model:     s.opts.EmbedModel,
		Output:    out,
		Timestamp: s.now().UTC(),
	}, nil
}

// Info описывает возможности сервиса и текущее число диалогов. Состояние не меняет.
func (s *Service) Info() Info {
	provider := "none"
	if s.gateway != nil {
		provider = s.gateway.Name()
	}
	return Info{
		API:        "Chat gateway with per-user conversation history",
		Status:     "online",
		Provider:   provider,
		ChatModel:  s.opts.ChatModel,
		EmbedModel: s.opts.EmbedModel,
		Configured: s.gateway != nil,
		Endpoints: []Endpoint{
			{Method: "GET", Path: "/generate", Params: map[string]string{
				"prompt":   "text sent to the model (required)",
				"uid":      "user identifier (required)",
				"imageurl": "image URL attached to the prompt (optional)",
				"reset":    "true|1 clears the history before this prompt (optional)",
			}},
			{Method: "GET", Path: "/reset", Params: map[string]string{"uid": "user identifier (required)"}},
			{Method: "GET", Path: "/embed", Params: map[string]string{
				"prompt": "text to embed (required)",
				"uid":    "user identifier (required)",
			}},
			{Method: "GET", Path: "/ws", Params: map[string]string{"uid": "user identifier (required)"}},
			{Method: "GET", Path: "/info"},
		},
		Conversations: s.store.Size(),
	}
}
