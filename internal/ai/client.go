package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured — провайдер не настроен (нет ключа), вызовы модели невозможны.
	ErrNotConfigured = errors.New("inference provider is not configured")
	// ErrUnsupported — операция не поддерживается провайдером.
	ErrUnsupported = errors.New("operation is not supported by provider")
	// ErrMalformedOutput — ответ провайдера не удалось разобрать.
	ErrMalformedOutput = errors.New("malformed provider output")
)

// Gateway интерфейс для взаимодействия с провайдером инференса. Все реализации должны быть взаимозаменяемыми.
type Gateway interface {
	// Name возвращает короткое имя провайдера для логов и /info.
	Name() string
	// Run отправляет упорядоченный список сообщений модели и возвращает сгенерированный ответ.
	Run(ctx context.Context, model string, messages []Message) (Output, error)
	// Embed возвращает эмбеддинг текста в том виде, в каком его отдал провайдер.
	Embed(ctx context.Context, model string, text string) (json.RawMessage, error)
}

// UpstreamError — провайдер вернул ошибку; Details передаётся клиенту как есть.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Details    any
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream error (status %d): %v", e.Provider, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s upstream error: %v", e.Provider, e.Details)
}
