package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fiuba-lse/consulta"
)

type handler struct {
	engine *consulta.Engine
}

func newHandler(e *consulta.Engine) *handler {
	return &handler{engine: e}
}

// POST /query
func (h *handler) handleQuery(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	var req consulta.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	req.SessionID = sessionIDOrNew(req.SessionID)
	c.Header("X-Session-Id", req.SessionID)

	resp, err := h.engine.Query(ctx, req)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// sessionIDOrNew returns id unchanged, or mints a fresh one for a caller
// that didn't supply one, so every request is correlatable across logs.
func sessionIDOrNew(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// POST /compare
func (h *handler) handleCompare(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	var req consulta.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	req.SessionID = sessionIDOrNew(req.SessionID)
	c.Header("X-Session-Id", req.SessionID)

	resp, err := h.engine.Compare(ctx, req)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /health
func (h *handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Health(c.Request.Context()))
}

func writeEngineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch consulta.KindOf(err) {
	case consulta.KindInputInvalid:
		status = http.StatusBadRequest
	case consulta.KindNotFound:
		status = http.StatusNotFound
	case consulta.KindCorpusEmpty:
		status = http.StatusServiceUnavailable
	case consulta.KindExternalUnavailable:
		status = http.StatusBadGateway
	}
	slog.Error("request failed", "error", err, "kind", consulta.KindOf(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
