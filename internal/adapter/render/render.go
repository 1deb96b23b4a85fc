// Package render превращает результаты сервиса диалогов в тела HTTP-ответов.
// Сервис отдаёт только стабильные поля; всё оформление живёт здесь.
package render

import (
	"ChatGateway/internal/config"
	"ChatGateway/internal/service/conversation"
	"encoding/json"
	"time"
)

const statusSuccess = "success"

// Renderer формирует JSON-тела в выбранном стиле: plain или decorated.
type Renderer struct {
	decorated bool
}

func New(style string) *Renderer {
	return &Renderer{decorated: style == config.StyleDecorated}
}

type generateBody struct {
	Status       string `json:"status"`
	UID          string `json:"uid"`
	Prompt       string `json:"prompt"`
	Response     string `json:"response"`
	MessageCount int    `json:"message_count"`
	Exchanges    int    `json:"exchanges"`
	Timestamp    string `json:"timestamp"`
	ImageURL     string `json:"image_url,omitempty"`
}

type resetBody struct {
	Status  string `json:"status"`
	UID     string `json:"uid"`
	Message string `json:"message"`
}

type embedBody struct {
	Status    string          `json:"status"`
	UID       string          `json:"uid"`
	Prompt    string          `json:"prompt"`
	Model     string          `json:"model"`
	Output    json.RawMessage `json:"output"`
	Timestamp string          `json:"timestamp"`
}

type infoBody struct {
	API           string                  `json:"api"`
	Status        string                  `json:"status"`
	Provider      string                  `json:"provider"`
	ChatModel     string                  `json:"chat_model"`
	EmbedModel    string                  `json:"embed_model"`
	Configured    bool                    `json:"configured"`
	Endpoints     []conversation.Endpoint `json:"endpoints"`
	Conversations int                     `json:"conversations"`
}

// Generate — тело успешного ответа /generate.
func (r *Renderer) Generate(res conversation.GenerateResult) ([]byte, error) {
	if r.decorated {
		return decoratedGenerate(res)
	}
	return json.Marshal(generateBody{
		Status:       statusSuccess,
		UID:          res.UID,
		Prompt:       res.Prompt,
		Response:     res.Response,
		MessageCount: res.MessageCount,
		Exchanges:    res.Exchanges,
		Timestamp:    timestamp(res.Timestamp),
		ImageURL:     res.ImageURL,
	})
}

// Reset — тело ответа /reset.
func (r *Renderer) Reset(uid string) ([]byte, error) {
	if r.decorated {
		return decoratedReset(uid)
	}
	return json.Marshal(resetBody{Status: statusSuccess, UID: uid, Message: "conversation history cleared"})
}

// Embed — тело ответа /embed.
func (r *Renderer) Embed(res conversation.EmbedResult) ([]byte, error) {
	if r.decorated {
		return decoratedEmbed(res)
	}
	return json.Marshal(embedBody{
		Status:    statusSuccess,
		UID:       res.UID,
		Prompt:    res.Prompt,
		Model:     res.Model,
		Output:    res.Output,
		Timestamp: timestamp(res.Timestamp),
	})
}

// Info — тело ответа /info; оформляется всегда одинаково.
func (r *Renderer) Info(info conversation.Info) ([]byte, error) {
	return json.Marshal(infoBody{
		API:           info.API,
		Status:        info.Status,
		Provider:      info.Provider,
		ChatModel:     info.ChatModel,
		EmbedModel:    info.EmbedModel,
		Configured:    info.Configured,
		Endpoints:     info.Endpoints,
		Conversations: info.Conversations,
	})
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
