package api

import (
	"errors"
	"net/http"

	"github.com/Alias1177/HeartRisk/internal/riskcheck"
	"github.com/Alias1177/HeartRisk/internal/session"
	"github.com/Alias1177/HeartRisk/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SessionCookie identifies the browser whose form and history are shown
const SessionCookie = "riskcheck_session"

const sessionCookieMaxAge = 365 * 24 * 60 * 60

type Handlers struct {
	sessions *session.Manager
}

func NewHandlers(sessions *session.Manager) *Handlers {
	return &Handlers{
		sessions: sessions,
	}
}

// session resolves the caller's session from its cookie, starting a new one
// for first visits or malformed cookies
func (h *Handlers) session(c *gin.Context) *session.Session {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		id = ""
	} else if _, err := uuid.Parse(id); err != nil {
		id = ""
	}

	var s *session.Session
	if id == "" {
		s = h.sessions.CreateSession(c.Request.Context())
	} else {
		s, _ = h.sessions.GetOrCreate(c.Request.Context(), id)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, s.ID, sessionCookieMaxAge, "/", "", false, true)
	return s
}

// statusFor maps a submission outcome to the HTTP status of the response
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, riskcheck.ErrInvalidForm):
		return http.StatusUnprocessableEntity
	case errors.Is(err, riskcheck.ErrSubmitInFlight):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handlers) Index(c *gin.Context) {
	s := h.session(c)
	c.HTML(http.StatusOK, "index.html", s.Controller.Snapshot())
}

// SubmitForm handles the HTML form post: apply the posted fields, submit and re-render
func (h *Handlers) SubmitForm(c *gin.Context) {
	s := h.session(c)

	for _, name := range models.FormFields {
		if value, ok := c.GetPostForm(name); ok {
			s.Controller.UpdateField(name, value)
		}
	}

	snap, err := s.Controller.Submit(c.Request.Context())
	c.HTML(statusFor(err), "index.html", snap)
}

func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "sessions": h.sessions.Count()})
}

func (h *Handlers) GetState(c *gin.Context) {
	s := h.session(c)
	c.JSON(http.StatusOK, s.Controller.Snapshot())
}

// UpdateForm applies a field map such as {"age": "45"} without validating it
func (h *Handlers) UpdateForm(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.session(c)
	for name, value := range fields {
		s.Controller.UpdateField(name, value)
	}

	c.JSON(http.StatusOK, s.Controller.Snapshot())
}

// Check optionally applies a field map, then submits the form
func (h *Handlers) Check(c *gin.Context) {
	var fields map[string]string
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	s := h.session(c)
	for name, value := range fields {
		s.Controller.UpdateField(name, value)
	}

	snap, err := s.Controller.Submit(c.Request.Context())
	c.JSON(statusFor(err), snap)
}

func (h *Handlers) GetHistory(c *gin.Context) {
	s := h.session(c)
	c.JSON(http.StatusOK, gin.H{"history": s.Controller.Snapshot().History})
}

func (h *Handlers) ExportHistory(c *gin.Context) {
	s := h.session(c)

	yamlData, err := yaml.Marshal(map[string]interface{}{
		"history": s.Controller.Snapshot().History,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate YAML"})
		return
	}

	c.Header("Content-Type", "application/x-yaml")
	c.Header("Content-Disposition", "attachment; filename=history.yaml")
	c.String(http.StatusOK, string(yamlData))
}
