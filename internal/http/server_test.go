package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/realtime"
	"github.com/zhpack/jobtrack/internal/repository"
	"github.com/zhpack/jobtrack/internal/service"
)

type testServer struct {
	srv *Server
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(
		&models.Profile{},
		&models.Machine{},
		&models.Process{},
		&models.JobCard{},
		&models.SubJobCard{},
		&models.JobProcess{},
	))

	logger := zap.NewNop()
	profiles := repository.NewProfileRepository(database)
	machines := repository.NewMachineRepository(database)
	processes := repository.NewProcessRepository(database)
	jobs := repository.NewJobRepository(database)
	work := repository.NewJobProcessRepository(database)

	auth := service.NewAuthService(profiles, nil, "test-secret", time.Hour, logger)
	submissions := service.NewSubmissionService(profiles, jobs, processes, work, nil, logger)
	workSvc := service.NewWorkService(work, jobs, machines, nil, logger)
	reports := service.NewReportService(work, jobs, processes)
	workers := service.NewWorkerService(profiles, auth)
	hub := realtime.NewHub(logger)

	srv := NewServer(auth, submissions, workSvc, reports, workers, machines, processes, hub, logger)
	return &testServer{srv: srv, db: database}
}

func (ts *testServer) seedUser(t *testing.T, code string, role models.Role, roles ...string) *models.Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	profile := &models.Profile{
		FullName:     "Test " + code,
		EmployeeCode: code,
		Role:         role,
		Roles:        roles,
		PasswordHash: string(hash),
	}
	require.NoError(t, ts.db.Create(profile).Error)
	return profile
}

func (ts *testServer) login(t *testing.T, code string) string {
	t.Helper()
	w := ts.request(t, http.MethodPost, "/api/login", "", gin.H{
		"employee_code": code,
		"password":      "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (ts *testServer) request(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.srv.Engine.ServeHTTP(w, req)
	return w
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "EMP100", models.RoleWorker, "printing")

	w := ts.request(t, http.MethodPost, "/api/login", "", gin.H{
		"employee_code": "EMP100",
		"password":      "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodGet, "/api/session", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenAcceptedViaQueryParameter(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "EMP100", models.RoleWorker, "printing")
	token := ts.login(t, "EMP100")

	w := ts.request(t, http.MethodGet, "/api/session?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionReturnsProfileAndNavigation(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "EMP100", models.RoleWorker, "printing", "foil")
	token := ts.login(t, "EMP100")

	w := ts.request(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Profile struct {
			EmployeeCode string `json:"employee_code"`
		} `json:"profile"`
		Navigation struct {
			Navbar []struct {
				Name string `json:"name"`
				Path string `json:"path"`
			} `json:"navbar"`
		} `json:"navigation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "EMP100", body.Profile.EmployeeCode)
	require.Len(t, body.Navigation.Navbar, 3)
	assert.Equal(t, "Home", body.Navigation.Navbar[0].Name)
	assert.Equal(t, "/printing", body.Navigation.Navbar[1].Path)
}

func TestWorkerCannotSubmitJobs(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "EMP100", models.RoleWorker, "printing")
	token := ts.login(t, "EMP100")

	w := ts.request(t, http.MethodPost, "/api/submit-job", token, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.request(t, http.MethodGet, "/api/workers", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMachineMutationsGatedByCapability(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "EMP100", models.RoleWorker, "sorting")
	ts.seedUser(t, "EMP200", models.RoleWorker, "machineinfo")
	plain := ts.login(t, "EMP100")
	keeper := ts.login(t, "EMP200")

	payload := gin.H{"id": "M1", "name": "Heidelberg 4C"}

	w := ts.request(t, http.MethodPost, "/api/machines", plain, payload)
	require.Equal(t, http.StatusForbidden, w.Code)
	var denied struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &denied))
	assert.Equal(t, "/sorting", denied.Redirect)

	w = ts.request(t, http.MethodPost, "/api/machines", keeper, payload)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// reads stay open to every signed-in identity
	w = ts.request(t, http.MethodGet, "/api/machines", plain, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitJobEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "ADMIN1", models.RoleAdmin)
	token := ts.login(t, "ADMIN1")

	for _, name := range []string{"Printing", "Sorting"} {
		require.NoError(t, ts.db.Create(&models.Process{ProcessName: name}).Error)
	}

	w := ts.request(t, http.MethodPost, "/api/submit-job", token, gin.H{
		"user_uid":      admin.ID,
		"job_id":        "J100",
		"customer_name": "Acme",
		"start_date":    "2026-08-01",
		"required_date": "2026-08-15",
		"sub_jobs": []gin.H{
			{
				"sub_job_id": "S1",
				"processes":  gin.H{"Printing": true, "Sorting": true},
				"machine_id": []gin.H{{"process": "Printing", "machine": "M1"}},
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		JobID          string `json:"job_id"`
		SubJobsCount   int    `json:"sub_jobs_count"`
		ProcessesCount int    `json:"processes_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "J100", created.JobID)
	assert.Equal(t, 1, created.SubJobsCount)
	assert.Equal(t, 2, created.ProcessesCount)

	var printing models.Process
	require.NoError(t, ts.db.First(&printing, "process_name = ?", "Printing").Error)

	w = ts.request(t, http.MethodGet, fmt.Sprintf("/api/process-jobs?process_id=%d", printing.ProcessID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Jobs []struct {
			JobID        string `json:"job_id"`
			CustomerName string `json:"customer_name"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Jobs, 1)
	assert.Equal(t, "Acme", listed.Jobs[0].CustomerName)
}

func TestCompleteAndUndoFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "ADMIN1", models.RoleAdmin)
	token := ts.login(t, "ADMIN1")
	require.NoError(t, ts.db.Create(&models.Process{ProcessName: "Printing"}).Error)

	w := ts.request(t, http.MethodPost, "/api/submit-job", token, gin.H{
		"user_uid":      admin.ID,
		"job_id":        "J100",
		"customer_name": "Acme",
		"start_date":    "2026-08-01",
		"required_date": "2026-08-15",
		"sub_jobs": []gin.H{
			{"sub_job_id": "S1", "processes": gin.H{"Printing": true}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var printing models.Process
	require.NoError(t, ts.db.First(&printing, "process_name = ?", "Printing").Error)

	w = ts.request(t, http.MethodPost, "/api/process-jobs/complete", token, gin.H{
		"job_id":     "J100",
		"sub_job_id": "S1",
		"process_id": printing.ProcessID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var row models.JobProcess
	require.NoError(t, ts.db.First(&row, "job_id = ?", "J100").Error)
	assert.Equal(t, models.JobProcessCompleted, row.Status)
	require.NotNil(t, row.EmployeeCode)
	assert.Equal(t, "ADMIN1", *row.EmployeeCode)

	w = ts.request(t, http.MethodPost, "/api/process-jobs/"+row.ID.String()+"/undo", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, ts.db.First(&row, "job_id = ?", "J100").Error)
	assert.Equal(t, models.JobProcessPending, row.Status)
	assert.Nil(t, row.EmployeeCode)

	w = ts.request(t, http.MethodPost, "/api/process-jobs/00000000-0000-0000-0000-000000000001/undo", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkerCRUDOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "ADMIN1", models.RoleAdmin)
	token := ts.login(t, "ADMIN1")

	w := ts.request(t, http.MethodPost, "/api/workers", token, gin.H{
		"full_name":     "Jordan Mills",
		"employee_code": "EMP300",
		"roles":         []string{"printing"},
		"password":      "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// duplicate employee code is a client error
	w = ts.request(t, http.MethodPost, "/api/workers", token, gin.H{
		"full_name":     "Other",
		"employee_code": "EMP300",
		"roles":         []string{"foil"},
		"password":      "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodPut, "/api/workers", token, gin.H{
		"id":            created.ID,
		"full_name":     "Jordan M.",
		"employee_code": "EMP300",
		"roles":         []string{"printing", "foil"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.request(t, http.MethodGet, "/api/workers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Workers []models.Profile `json:"workers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Workers, 1)
	assert.Equal(t, "Jordan M.", list.Workers[0].FullName)

	w = ts.request(t, http.MethodDelete, "/api/workers", token, gin.H{"id": created.ID})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

func TestReportsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "ADMIN1", models.RoleAdmin)
	token := ts.login(t, "ADMIN1")
	require.NoError(t, ts.db.Create(&models.Process{ProcessName: "Printing"}).Error)

	w := ts.request(t, http.MethodPost, "/api/submit-job", token, gin.H{
		"user_uid":      admin.ID,
		"job_id":        "J100",
		"customer_name": "Acme",
		"start_date":    "2026-08-01",
		"required_date": "2026-08-15",
		"sub_jobs": []gin.H{
			{"sub_job_id": "S1", "processes": gin.H{"Printing": true}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.request(t, http.MethodGet, "/api/reports?status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		Groups []struct {
			JobID     string `json:"job_id"`
			Completed int    `json:"completed"`
			Total     int    `json:"total"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "J100", report.Groups[0].JobID)
	assert.Equal(t, 0, report.Groups[0].Completed)
	assert.Equal(t, 1, report.Groups[0].Total)

	w = ts.request(t, http.MethodGet, "/api/reports?status=completed", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report.Groups = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Empty(t, report.Groups)
}
