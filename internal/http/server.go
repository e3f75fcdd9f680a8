package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zhpack/jobtrack/internal/realtime"
	"github.com/zhpack/jobtrack/internal/repository"
	"github.com/zhpack/jobtrack/internal/service"
)

// Server wraps the gin engine and collaborators needed to handle API requests.
type Server struct {
	Engine      *gin.Engine
	auth        *service.AuthService
	submissions *service.SubmissionService
	work        *service.WorkService
	reports     *service.ReportService
	workers     *service.WorkerService
	machines    *repository.MachineRepository
	processes   *repository.ProcessRepository
	hub         *realtime.Hub
	logger      *zap.Logger
}

// NewServer constructs a new API server and registers routes.
func NewServer(
	auth *service.AuthService,
	submissions *service.SubmissionService,
	work *service.WorkService,
	reports *service.ReportService,
	workers *service.WorkerService,
	machines *repository.MachineRepository,
	processes *repository.ProcessRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *Server {
	router := gin.New()
	srv := &Server{
		Engine:      router,
		auth:        auth,
		submissions: submissions,
		work:        work,
		reports:     reports,
		workers:     workers,
		machines:    machines,
		processes:   processes,
		hub:         hub,
		logger:      logger,
	}
	router.Use(gin.Recovery(), requestLogger(logger), cors())
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	api := s.Engine.Group("/api")
	api.POST("/login", s.login)

	authed := api.Group("", s.authRequired())
	authed.GET("/session", s.session)
	authed.GET("/navigation", s.navigationPages)
	authed.GET("/processes", s.listProcesses)
	authed.GET("/machines", s.listMachines)

	authed.GET("/process-jobs", s.listProcessJobs)
	authed.POST("/process-jobs/complete", s.completeProcess)
	authed.POST("/process-jobs/:id/undo", s.undoProcess)
	authed.GET("/printing-jobs", s.printingJobs)
	authed.GET("/reports", s.buildReport)
	authed.GET("/events", s.streamEvents)

	admin := authed.Group("", s.requireAdmin())
	admin.POST("/submit-job", s.submitJob)
	admin.GET("/workers", s.listWorkers)
	admin.POST("/workers", s.createWorker)
	admin.PUT("/workers", s.updateWorker)
	admin.DELETE("/workers", s.deleteWorker)

	machineAdmin := authed.Group("", s.requireCapability("machineinfo"))
	machineAdmin.POST("/machines", s.createMachine)
	machineAdmin.PUT("/machines", s.updateMachine)
	machineAdmin.DELETE("/machines", s.deleteMachine)
}
