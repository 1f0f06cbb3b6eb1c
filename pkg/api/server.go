// Package api exposes the engine over HTTP for a UI layer.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

// TaskService is the engine surface the handlers use.
type TaskService interface {
	Tasks() []model.Task
	Overdue(now time.Time) []model.Task
	AddTask(ctx context.Context, draft model.Draft) (model.Task, error)
	ToggleFinished(ctx context.Context, id string) ([]model.Task, error)
	DeleteTask(ctx context.Context, id string) ([]model.Task, error)
}

type Server struct {
	tasks      TaskService
	deviceZone *time.Location
	router     *gin.Engine
	now        func() time.Time
}

// NewServer builds the router. deviceZone interprets "at" wall-clock times in requests.
func NewServer(tasks TaskService, deviceZone *time.Location) *Server {
	if deviceZone == nil {
		deviceZone = time.Local
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		tasks:      tasks,
		deviceZone: deviceZone,
		router:     router,
		now:        time.Now,
	}

	router.GET("/healthz", s.handleHealth)
	router.GET("/tasks", s.handleList)
	router.POST("/tasks", s.handleCreate)
	router.POST("/tasks/:id/toggle", s.handleToggle)
	router.DELETE("/tasks/:id", s.handleDelete)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("[API] Shutting down")
	return srv.Shutdown(shutdownCtx)
}
