package httpapi

import (
	"ChatGateway/internal/service/conversation"
	"net/http"

	"github.com/gin-gonic/gin"
)

const contentTypeJSON = "application/json; charset=utf-8"

// handleGenerate — GET /generate?prompt=&uid=&imageurl=&reset=
func (s *Server) handleGenerate(c *gin.Context) {
	res, err := s.svc.Generate(c.Request.Context(), conversation.GenerateInput{
		Prompt:   c.Query("prompt"),
		UID:      c.Query("uid"),
		ImageURL: c.Query("imageurl"),
		Reset:    conversation.ParseReset(c.Query("reset")),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeRendered(c, func() ([]byte, error) { return s.render.Generate(res) })
}

// handleReset — GET /reset?uid=
func (s *Server) handleReset(c *gin.Context) {
	uid := c.Query("uid")
	if err := s.svc.Reset(uid); err != nil {
		s.writeError(c, err)
		return
	}
	s.writeRendered(c, func() ([]byte, error) { return s.render.Reset(uid) })
}

// handleInfo — GET /info
func (s *Server) handleInfo(c *gin.Context) {
	info := s.svc.Info()
	s.writeRendered(c, func() ([]byte, error) { return s.render.Info(info) })
}

// handleEmbed — GET /embed?prompt=&uid=
func (s *Server) handleEmbed(c *gin.Context) {
	res, err := s.svc.Embed(c.Request.Context(), conversation.EmbedInput{
		Prompt: c.Query("prompt"),
		UID:    c.Query("uid"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeRendered(c, func() ([]byte, error) { return s.render.Embed(res) })
}

func (s *Server) writeRendered(c *gin.Context, build func() ([]byte, error)) {
	body, err := build()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, body)
}
