package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/truthlens/internal/history"
	"github.com/ppiankov/truthlens/internal/model"
)

const usage = `Welcome to TruthLens! Use POST /analyze with JSON {"text": "your claim here"} to check a claim.`

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the reply of POST /analyze
type AnalyzeResponse struct {
	*model.ResolutionOutcome
	ID string `json:"id,omitempty"` // History record, when stored
}

func (s *Server) handleHome(c *gin.Context) {
	c.String(http.StatusOK, usage)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no text provided"})
		return
	}

	outcome, err := s.resolver.Resolve(c.Request.Context(), req.Text)
	if errors.Is(err, model.ErrEmptyInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no text provided"})
		return
	}

	resp := AnalyzeResponse{ResolutionOutcome: outcome}
	if s.history != nil && outcome.Error != model.ErrorCodeCancelled {
		rec, err := s.history.Save(outcome.Claim, outcome)
		if err != nil {
			s.logger.Warn("history save failed", "error", err)
		} else {
			resp.ID = rec.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListHistory(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.history.List(limit)
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	total, err := s.history.Count()
	if err != nil {
		s.logger.Error("history count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}

	n, err := s.history.Clear()
	if err != nil {
		s.logger.Error("history clear failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	s.logger.Info("history cleared", "deleted", n)
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) handleGetHistory(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}

	rec, err := s.history.Get(c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	if err != nil {
		s.logger.Error("history get failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	if !s.historyEnabled(c) {
		return
	}

	err := s.history.Delete(c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	if err != nil {
		s.logger.Error("history delete failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) historyEnabled(c *gin.Context) bool {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled"})
		return false
	}
	return true
}
