package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zhpack/jobtrack/internal/service"
)

func (s *Server) listWorkers(c *gin.Context) {
	workers, err := s.workers.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

func (s *Server) createWorker(c *gin.Context) {
	var payload service.CreateWorkerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	worker, err := s.workers.Create(c.Request.Context(), payload)
	if err != nil {
		c.JSON(workerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, worker)
}

func (s *Server) updateWorker(c *gin.Context) {
	var payload service.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	worker, err := s.workers.Update(c.Request.Context(), payload)
	if err != nil {
		c.JSON(workerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, worker)
}

func (s *Server) deleteWorker(c *gin.Context) {
	var payload struct {
		ID string `json:"id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.workers.Delete(c.Request.Context(), mustParseUUID(payload.ID)); err != nil {
		c.JSON(workerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// mustParseUUID is safe after the binding layer validated the uuid format.
func mustParseUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func workerErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrWorkerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmployeeCodeTaken),
		errors.Is(err, service.ErrNoRolesSelected),
		errors.Is(err, service.ErrPasswordTooShort):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
