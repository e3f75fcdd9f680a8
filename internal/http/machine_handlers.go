package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
)

func (s *Server) listMachines(c *gin.Context) {
	machines, err := s.machines.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

func (s *Server) createMachine(c *gin.Context) {
	var payload struct {
		Name          string `json:"name" binding:"required"`
		Size          string `json:"size"`
		Capacity      *int   `json:"capacity"`
		AvailableDays *int   `json:"available_days"`
		Description   string `json:"description"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine := &models.Machine{
		Name:          payload.Name,
		Size:          payload.Size,
		Capacity:      payload.Capacity,
		AvailableDays: payload.AvailableDays,
		Description:   payload.Description,
	}
	if err := s.machines.Create(c.Request.Context(), machine); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, machine)
}

func (s *Server) updateMachine(c *gin.Context) {
	var payload struct {
		ID            string `json:"id" binding:"required"`
		Name          string `json:"name" binding:"required"`
		Size          string `json:"size"`
		Capacity      *int   `json:"capacity"`
		AvailableDays *int   `json:"available_days"`
		Description   string `json:"description"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := s.machines.FindByID(c.Request.Context(), payload.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	machine.Name = payload.Name
	machine.Size = payload.Size
	machine.Capacity = payload.Capacity
	machine.AvailableDays = payload.AvailableDays
	machine.Description = payload.Description
	if err := s.machines.Update(c.Request.Context(), machine); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, machine)
}

func (s *Server) deleteMachine(c *gin.Context) {
	var payload struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.machines.Delete(c.Request.Context(), payload.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
