package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harrisonrobin/tasknotify/pkg/clock"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

// CreateTaskRequest carries either Date (epoch milliseconds) or At
// ("2006-01-02 15:04" on the device clock).
type CreateTaskRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Date        int64  `json:"date"`
	At          string `json:"at"`
}

// GET /healthz
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /tasks?overdue=1
func (s *Server) handleList(c *gin.Context) {
	var tasks []model.Task
	if c.Query("overdue") != "" {
		tasks = s.tasks.Overdue(s.now())
	} else {
		tasks = s.tasks.Tasks()
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// POST /tasks
func (s *Server) handleCreate(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": model.KindValidation})
		return
	}

	draft := model.Draft{Name: req.Name, Description: req.Description, Date: req.Date}
	if req.At != "" {
		local, err := clock.ParseLocal(req.At)
		if err != nil {
			respondError(c, err)
			return
		}
		at, err := local.In(s.deviceZone)
		if err != nil {
			respondError(c, err)
			return
		}
		draft.Date = at.UnixMilli()
	}

	task, err := s.tasks.AddTask(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// POST /tasks/:id/toggle
func (s *Server) handleToggle(c *gin.Context) {
	tasks, err := s.tasks.ToggleFinished(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// DELETE /tasks/:id
func (s *Server) handleDelete(c *gin.Context) {
	tasks, err := s.tasks.DeleteTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func respondError(c *gin.Context, err error) {
	kind := model.KindOf(err)
	c.JSON(statusFor(kind), gin.H{"error": err.Error(), "kind": kind})
}

func statusFor(kind model.Kind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindBusy:
		return http.StatusConflict
	case model.KindProvider:
		return http.StatusBadGateway
	case model.KindTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

