package httpapi

import (
	"ChatGateway/internal/service/conversation"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// wsRequest — одно текстовое сообщение клиента в /ws.
type wsRequest struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"imageurl"`
	Reset    wsFlag `json:"reset"`
}

// wsFlag принимает reset как JSON-boolean, как строку ("true"/"1") и как число 1.
type wsFlag bool

func (f *wsFlag) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	switch v.Type {
	case gjson.True, gjson.False, gjson.Null:
		*f = wsFlag(v.Bool())
	case gjson.String:
		*f = wsFlag(conversation.ParseReset(v.Str))
	case gjson.Number:
		*f = v.Raw == "1"
	default:
		return fmt.Errorf("reset must be a boolean, string or number, got %s", v.Raw)
	}
	return nil
}

// handleWebsocket — GET /ws?uid=. Каждое сообщение клиента — отдельный обмен для этого uid;
// ответ совпадает с телом, которое вернул бы /generate.
func (s *Server) handleWebsocket(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		s.writeError(c, &conversation.ValidationError{Param: "uid"})
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		s.logger.Warnw("Websocket upgrade failed", "uid", uid, "error", err)
		return
	}
	defer conn.Close()

	requestID := c.GetString(ctxRequestID)
	s.logger.Infow("Websocket connected", "request_id", requestID, "uid", uid)
	ctx := c.Request.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warnw("Websocket closed unexpectedly", "request_id", requestID, "uid", uid, "error", err)
			} else {
				s.logger.Infow("Websocket disconnected", "request_id", requestID, "uid", uid)
			}
			return
		}

		reply, err := s.wsExchange(ctx, uid, data)
		if err != nil {
			status, body := classify(err)
			s.logError(requestID, status, err)
			reply, _ = json.Marshal(body)
		}
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			s.logger.Warnw("Websocket write failed", "request_id", requestID, "uid", uid, "error", err)
			return
		}
	}
}

// errBadFrame — сообщение клиента не разбирается как объект запроса.
var errBadFrame = errors.New("websocket message must be a JSON object {prompt, imageurl, reset}")

func (s *Server) wsExchange(ctx context.Context, uid string, data []byte) ([]byte, error) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadFrame, err)
	}
	res, err := s.svc.Generate(ctx, conversation.GenerateInput{
		Prompt:   req.Prompt,
		UID:      uid,
		ImageURL: req.ImageURL,
		Reset:    bool(req.Reset),
	})
	if err != nil {
		return nil, err
	}
	return s.render.Generate(res)
}
