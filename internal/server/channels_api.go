package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/gin-gonic/gin"
)

// ChannelNameRequest is the body of create and rename requests.
type ChannelNameRequest struct {
	Name *string `json:"name" binding:"required"`
}

// RegisterChannelEndpoints mounts the channel CRUD handlers on r.
func (s *Server) RegisterChannelEndpoints(r *gin.RouterGroup) {
	r.GET("", s.listChannelsController)
	r.POST("", s.createChannelController)
	r.GET("/:id", s.getChannelController)
	r.PATCH("/:id", s.renameChannelController)
	r.DELETE("/:id", s.deleteChannelController)

	// Preflight requests only need the CORS headers set by the group middleware.
	r.OPTIONS("", preflightController)
	r.OPTIONS("/:id", preflightController)
}

func preflightController(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (s *Server) listChannelsController(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.List())
}

func (s *Server) createChannelController(c *gin.Context) {
	name, ok := bindChannelName(c)
	if !ok {
		return
	}

	created, err := s.registry.Create(name)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	s.log.Info("Channel created", "channel_id", created.ID, "name", created.Name)
	c.JSON(http.StatusOK, created)
}

func (s *Server) getChannelController(c *gin.Context) {
	id, ok := bindChannelID(c)
	if !ok {
		return
	}

	found, exists := s.registry.Get(id)
	if !exists {
		abortWithDomainError(c, &channel.NotFoundError{ID: id})
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) renameChannelController(c *gin.Context) {
	id, ok := bindChannelID(c)
	if !ok {
		return
	}
	if _, exists := s.registry.Get(id); !exists {
		abortWithDomainError(c, &channel.NotFoundError{ID: id})
		return
	}

	name, ok := bindChannelName(c)
	if !ok {
		return
	}

	renamed, err := s.registry.Rename(id, name)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	s.log.Info("Channel renamed", "channel_id", renamed.ID, "name", renamed.Name)
	c.JSON(http.StatusOK, renamed)
}

func (s *Server) deleteChannelController(c *gin.Context) {
	id, ok := bindChannelID(c)
	if !ok {
		return
	}

	if !s.registry.Delete(id) {
		abortWithDomainError(c, &channel.NotFoundError{ID: id})
		return
	}

	s.log.Info("Channel deleted", "channel_id", id)
	c.Status(http.StatusOK)
}

func bindChannelID(c *gin.Context) (channel.ID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeMalformedRequest, "channel id must be an integer")
		return 0, false
	}
	return channel.ID(id), true
}

// bindChannelName decodes {"name": string}. Malformed JSON and a missing or
// non-string name are reported with distinct messages.
func bindChannelName(c *gin.Context) (string, bool) {
	var req ChannelNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			abortWithError(c, http.StatusBadRequest, CodeMalformedRequest, "request body must be a JSON object")
			return "", false
		}
		abortWithError(c, http.StatusBadRequest, CodeValidation, "name must be a string")
		return "", false
	}
	return *req.Name, true
}
