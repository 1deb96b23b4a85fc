package main

import (
	"ChatGateway/internal/adapter/httpapi"
	"ChatGateway/internal/ai"
	"ChatGateway/internal/config"
	"ChatGateway/internal/service/conversation"
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// HTTP-шлюз к провайдеру инференса с историей диалогов в памяти.
func main() {
	cfg := config.NewConfig()

	logger, err := newLogger(cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	chatModel, embedModel := cfg.Models()
	sugar.Infow(
		"Starting gateway",
		"DebugMode", cfg.DebugMode,
		"Provider", cfg.Provider,
		"ChatModel", chatModel,
		"SerializePerUser", cfg.SerializePerUser,
	)

	// Без ключа сервер всё равно стартует: /info и статика работают, генерация отвечает ошибкой конфигурации.
	gateway, err := ai.NewGateway(cfg, sugar)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			sugar.Fatalw("failed to create inference gateway", "error", err)
		}
		sugar.Warnw("Inference provider is not configured; generation requests will fail", "provider", cfg.Provider, "error", err)
	}

	// Хранилище историй живёт столько же, сколько процесс.
	store := conversation.NewStore()
	svc := conversation.NewService(store, gateway, conversation.Options{
		ChatModel:        chatModel,
		EmbedModel:       embedModel,
		SerializePerUser: cfg.SerializePerUser,
		UpstreamTimeout:  cfg.UpstreamTimeout,
	}, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(cfg, svc, sugar)
	if err := srv.Start(ctx); err != nil {
		sugar.Fatalw("failed to start server", "error", err)
	}

	<-ctx.Done()
	if err := srv.Stop(context.Background()); err != nil {
		sugar.Warnw("server stop error", "error", err)
	}
	sugar.Infow("Gateway stopped", "conversations", store.Size())
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
