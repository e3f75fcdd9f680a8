package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/service"
)

func (s *Server) submitJob(c *gin.Context) {
	var payload service.SubmitJobRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.submissions.Submit(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         "job card created successfully",
		"job_id":          result.JobID,
		"job_code":        result.JobCode,
		"sub_jobs_count":  result.SubJobsCount,
		"processes_count": result.ProcessesCount,
		"created_by":      result.CreatedBy,
		"employee_code":   result.EmployeeCode,
	})
}

func (s *Server) listProcessJobs(c *gin.Context) {
	processID, err := strconv.Atoi(c.Query("process_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid process_id"})
		return
	}
	items, err := s.work.List(c.Request.Context(), processID, c.Query("machine_id"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": items})
}

func (s *Server) completeProcess(c *gin.Context) {
	var payload service.CompleteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := currentProfile(c)
	employeeCode, err := s.auth.EmployeeCode(c.Request.Context(), profile.ID)
	if err != nil || employeeCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not identify your employee code"})
		return
	}

	rows, err := s.work.Complete(c.Request.Context(), payload, employeeCode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": rows})
}

func (s *Server) undoProcess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	row, err := s.work.Undo(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "work item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) printingJobs(c *gin.Context) {
	groups, err := s.work.PrintingJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": groups})
}

func (s *Server) buildReport(c *gin.Context) {
	report, err := s.reports.Build(c.Request.Context(), c.DefaultQuery("status", service.FilterAll), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) listProcesses(c *gin.Context) {
	processes, err := s.processes.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processes": processes})
}
