package httpapi

import (
	"ChatGateway/internal/ai"
	"ChatGateway/internal/service/conversation"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorBody — единый формат ошибки: error + details (ответ провайдера) или message.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// statusClientClosedRequest — клиент закрыл соединение до ответа (код nginx, в net/http его нет).
const statusClientClosedRequest = 499

// classify сопоставляет ошибку сервиса HTTP-статусу и телу ответа.
// Внутренние ошибки наружу не раскрываются: подробности только в логе.
func classify(err error) (int, errorBody) {
	var vErr *conversation.ValidationError
	var upErr *ai.UpstreamError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorBody{Error: vErr.Error()}
	case errors.Is(err, errBadFrame):
		return http.StatusBadRequest, errorBody{Error: errBadFrame.Error()}
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusInternalServerError, errorBody{Error: "inference provider is not configured"}
	case errors.As(err, &upErr):
		return http.StatusInternalServerError, errorBody{Error: "upstream inference call failed", Details: upErr.Details}
	case errors.Is(err, ai.ErrUnsupported):
		return http.StatusNotImplemented, errorBody{Error: "operation is not supported by the configured provider"}
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, errorBody{Error: "request canceled by client"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error", Message: "unexpected failure while processing the request"}
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, body := classify(err)
	s.logError(c.GetString(ctxRequestID), status, err)
	c.JSON(status, body)
}

func (s *Server) logError(requestID string, status int, err error) {
	fields := []any{"request_id", requestID, "status", status, "error", err}
	switch {
	case status == http.StatusBadRequest:
		s.logger.Infow("Request rejected", fields...)
	case status == statusClientClosedRequest:
		s.logger.Infow("Request canceled by client", fields...)
	case errors.Is(err, ai.ErrNotConfigured), errors.Is(err, ai.ErrUnsupported):
		s.logger.Warnw("Request failed", fields...)
	default:
		s.logger.Errorw("Request failed", fields...)
	}
}
