package httpapi

import (
	"ChatGateway/internal/adapter/render"
	"ChatGateway/internal/config"
	"ChatGateway/internal/service/conversation"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server — HTTP-шлюз: маршруты gin поверх сервиса диалогов.
type Server struct {
	cfg      *config.Config
	svc      *conversation.Service
	render   *render.Renderer
	engine   *gin.Engine
	srv      *http.Server
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
	running  atomic.Bool
	addr     atomic.Value

	// stopOnce: повторные и параллельные вызовы Stop ждут завершения первого shutdown.
	stopOnce sync.Once
	stopErr  error
}

func NewServer(cfg *config.Config, svc *conversation.Service, logger *zap.SugaredLogger) *Server {
	if cfg.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		render: render.New(cfg.ResponseStyle),
		engine: gin.New(),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.routes()

	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.engine.Use(requestID(), accessLog(s.logger), recovery(s.logger))

	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Старые имена маршрутов оставлены как синонимы.
	for _, path := range []string{"/generate", "/claude"} {
		s.engine.GET(path, s.handleGenerate)
	}
	s.engine.GET("/reset", s.handleReset)
	for _, path := range []string{"/info", "/api-info"} {
		s.engine.GET(path, s.handleInfo)
	}
	for _, path := range []string{"/embed", "/minilm"} {
		s.engine.GET(path, s.handleEmbed)
	}
	s.engine.GET("/ws", s.handleWebsocket)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "path": c.Request.URL.Path})
	})
}

// Handler возвращает http.Handler со всеми маршрутами.
func (s *Server) Handler() http.Handler { return s.engine }

// Start занимает адрес и запускает сервер в отдельной горутине.
// При отмене ctx запускается graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.addr.Store(ln.Addr().String())

	go func() {
		s.logger.Infow("HTTP server listening", "addr", ln.Addr().String(), "provider", s.cfg.Provider, "style", s.cfg.ResponseStyle)
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("HTTP server stopped with error", "error", err)
		} else {
			s.logger.Infow("HTTP server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

// Stop выполняет graceful shutdown и возвращается, только когда активные запросы завершены
// (или истёк таймаут). Безопасен для параллельного вызова.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}
	s.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeoutCause(ctx, shutdownTimeout, errors.New("http server shutdown timeout"))
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnw("graceful shutdown error", "error", err)
			s.stopErr = s.srv.Close()
		}
	})
	return s.stopErr
}

// shutdownTimeout — сколько ждём активные запросы при остановке.
const shutdownTimeout = 5 * time.Second

// Addr возвращает фактический адрес после Start (с портом, выбранным ОС для :0).
func (s *Server) Addr() string {
	if addr, ok := s.addr.Load().(string); ok {
		return addr
	}
	return s.cfg.BindAddr
}

func (s *Server) handleIndex(c *gin.Context) {
	c.File(filepath.Join(s.cfg.PublicDir, "index.html"))
}
