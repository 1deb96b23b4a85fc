package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	ProviderBytez  = "bytez"
	ProviderOpenAI = "openai"
	ProviderStub   = "stub"

	StylePlain     = "plain"
	StyleDecorated = "decorated"
)

type Config struct {
	DebugMode     bool   `env:"DEBUG_MODE"`     // Режим дебага (development-логгер zap, gin в debug)
	BindAddr      string `env:"BIND_ADDR"`      // Адрес HTTP-сервера, напр. 0.0.0.0:5000
	PublicDir     string `env:"PUBLIC_DIR"`     // Папка со статикой, отдаётся на "/"
	Provider      string `env:"PROVIDER"`       // bytez|openai|stub
	ResponseStyle string `env:"RESPONSE_STYLE"` // plain|decorated — оформление JSON-ответов

	// SerializePerUser — последовательная обработка запросов одного uid.
	// Если выключено, два параллельных запроса одного пользователя читают одну и ту же историю.
	SerializePerUser bool `env:"SERIALIZE_PER_USER"`
	// UpstreamTimeout — таймаут вызова провайдера; 0 — без таймаута.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"`

	Bytez  BytezConfig
	OpenAI OpenAIConfig
}

// BytezConfig конфигурация провайдера Bytez.
type BytezConfig struct {
	APIKey     string `env:"BYTEZ_API_KEY"` // Ключ берём из .env/ENV. Если пуст — генерация отвечает ошибкой конфигурации
	BaseURL    string `env:"BYTEZ_BASE_URL"`
	ChatModel  string `env:"BYTEZ_CHAT_MODEL"`
	EmbedModel string `env:"BYTEZ_EMBED_MODEL"`
}

// OpenAIConfig конфигурация провайдера OpenAI (Responses API).
type OpenAIConfig struct {
	APIKey     string `env:"OPENAI_API_KEY"`
	BaseURL    string `env:"OPENAI_BASE_URL"` // Пусто — адрес по умолчанию из SDK
	ChatModel  string `env:"OPENAI_CHAT_MODEL"`
	EmbedModel string `env:"OPENAI_EMBED_MODEL"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:        false,
		BindAddr:         "0.0.0.0:5000",
		PublicDir:        "public",
		Provider:         ProviderBytez,
		ResponseStyle:    StylePlain,
		SerializePerUser: true,
		UpstreamTimeout:  0,
		Bytez: BytezConfig{
			BaseURL:    "https://api.bytez.com",
			ChatModel:  "anthropic/claude-3-haiku-20240307",
			EmbedModel: "sentence-transformers/all-MiniLM-L6-v2",
		},
		OpenAI: OpenAIConfig{
			ChatModel:  "gpt-4o",
			EmbedModel: "text-embedding-3-small",
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и флагов командной строки.
func NewConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load собирает конфигурацию: дефолты → .env → ENV → флаги из args.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением и флагами
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.StringVar(&cfg.BindAddr, "bind-addr", cfg.BindAddr, "адрес HTTP-сервера (напр. 0.0.0.0:5000)")
	fs.StringVar(&cfg.PublicDir, "public-dir", cfg.PublicDir, "папка со статикой для корневого маршрута")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "провайдер инференса: bytez|openai|stub")
	fs.StringVar(&cfg.ResponseStyle, "response-style", cfg.ResponseStyle, "оформление ответов: plain|decorated")
	fs.BoolVar(&cfg.SerializePerUser, "serialize-per-user", cfg.SerializePerUser, "обрабатывать запросы одного uid последовательно")
	fs.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "таймаут вызова провайдера, напр. 30s; 0 — без таймаута")
	// Bytez
	fs.StringVar(&cfg.Bytez.APIKey, "bytez-api-key", cfg.Bytez.APIKey, "API ключ Bytez (перекрывает ENV)")
	fs.StringVar(&cfg.Bytez.BaseURL, "bytez-base-url", cfg.Bytez.BaseURL, "базовый адрес API Bytez")
	fs.StringVar(&cfg.Bytez.ChatModel, "bytez-chat-model", cfg.Bytez.ChatModel, "модель Bytez для диалога")
	fs.StringVar(&cfg.Bytez.EmbedModel, "bytez-embed-model", cfg.Bytez.EmbedModel, "модель Bytez для эмбеддингов")
	// OpenAI
	fs.StringVar(&cfg.OpenAI.APIKey, "openai-api-key", cfg.OpenAI.APIKey, "API ключ OpenAI (перекрывает ENV)")
	fs.StringVar(&cfg.OpenAI.BaseURL, "openai-base-url", cfg.OpenAI.BaseURL, "базовый адрес API OpenAI")
	fs.StringVar(&cfg.OpenAI.ChatModel, "openai-chat-model", cfg.OpenAI.ChatModel, "модель OpenAI для диалога")
	fs.StringVar(&cfg.OpenAI.EmbedModel, "openai-embed-model", cfg.OpenAI.EmbedModel, "модель OpenAI для эмбеддингов")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.ResponseStyle = strings.ToLower(strings.TrimSpace(cfg.ResponseStyle))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения-перечисления. Отсутствие ключа провайдера ошибкой не считается:
// сервер стартует и отвечает ошибкой конфигурации на каждый запрос к модели.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderBytez, ProviderOpenAI, ProviderStub:
	default:
		return fmt.Errorf("unknown provider %q; expected bytez|openai|stub", c.Provider)
	}
	switch c.ResponseStyle {
	case StylePlain, StyleDecorated:
	default:
		return fmt.Errorf("unknown response style %q; expected plain|decorated", c.ResponseStyle)
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative: %s", c.UpstreamTimeout)
	}
	return nil
}

// Models возвращает модели диалога и эмбеддингов выбранного провайдера.
func (c *Config) Models() (chat string, embed string) {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.ChatModel, c.OpenAI.EmbedModel
	case ProviderStub:
		return "stub", "stub"
	default:
		return c.Bytez.ChatModel, c.Bytez.EmbedModel
	}
}
