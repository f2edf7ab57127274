package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appforge-io/appforge-backend/internal/projects/domain"
	"github.com/appforge-io/appforge-backend/internal/projects/repository"
	"github.com/appforge-io/appforge-backend/internal/queue"
)

// EventPublisher emits the build trigger after a USER message is recorded.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BuildEvent) error
}

type Handler struct {
	projects  *repository.ProjectRepo
	messages  *repository.MessageRepo
	publisher EventPublisher
	window    int
}

func NewHandler(projects *repository.ProjectRepo, messages *repository.MessageRepo, publisher EventPublisher, window int) *Handler {
	return &Handler{projects: projects, messages: messages, publisher: publisher, window: window}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/projects", h.createProject)
	r.POST("/projects/:project_id/messages", h.createMessage)
	r.GET("/projects/:project_id/messages", h.listMessages)
}

type createProjectReq struct {
	Name string `json:"name"`
}

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

type createMessageReq struct {
	Value string `json:"value"`
}

// createMessage durably records the USER turn first, then publishes the
// build event. The event is the sole entry point to the build core.
func (h *Handler) createMessage(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("project_id"))

	var req createMessageReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Value) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if _, err := h.projects.Get(c.Request.Context(), projectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	msg, err := h.messages.CreateMessage(c.Request.Context(), projectID, domain.RoleUser, domain.TypeResult, req.Value, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), queue.BuildEvent{ProjectID: projectID, Value: req.Value}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"ok": true, "message": msg})
}

func (h *Handler) listMessages(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("project_id"))

	items, err := h.messages.RecentWindow(c.Request.Context(), projectID, h.window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": items})
}
