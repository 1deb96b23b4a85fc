package ai

import (
	"ChatGateway/internal/config"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// NewGateway создаёт клиента выбранного провайдера.
// Без ключа возвращает ErrNotConfigured: сервер продолжает работать, но генерация недоступна.
func NewGateway(cfg *config.Config, logger *zap.SugaredLogger) (Gateway, error) {
	switch cfg.Provider {
	case config.ProviderStub:
		return NewStubClient(), nil
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is empty", ErrNotConfigured)
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		oClient := openai.NewClient(opts...)
		return NewResponsesClient(&oClient, logger), nil
	case config.ProviderBytez:
		if cfg.Bytez.APIKey == "" {
			return nil, fmt.Errorf("%w: BYTEZ_API_KEY is empty", ErrNotConfigured)
		}
		return NewBytezClient(&http.Client{}, cfg.Bytez.BaseURL, cfg.Bytez.APIKey, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
