package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/repository"
)

func newReportService(database *gorm.DB) *ReportService {
	return NewReportService(
		repository.NewJobProcessRepository(database),
		repository.NewJobRepository(database),
		repository.NewProcessRepository(database),
	)
}

// seedReportFixture creates two jobs: J100/S1 fully completed (2 items),
// J100/S2 mixed (1 of 2 completed) and K200/S1 fully pending (1 item).
func seedReportFixture(t *testing.T, database *gorm.DB) {
	t.Helper()
	ids := seedCatalog(t, database, "Printing", "Sorting")
	work := newWorkService(database)

	seedWork(t, database, "J100", "Acme Cartons",
		models.JobProcess{SubJobID: "S1", ProcessID: ids["Printing"]},
		models.JobProcess{SubJobID: "S1", ProcessID: ids["Sorting"]},
		models.JobProcess{SubJobID: "S2", ProcessID: ids["Printing"]},
		models.JobProcess{SubJobID: "S2", ProcessID: ids["Sorting"]},
	)
	seedWork(t, database, "K200", "Beta Print",
		models.JobProcess{SubJobID: "S1", ProcessID: ids["Printing"]},
	)
	require.NoError(t, database.Create(&models.SubJobCard{
		JobID: "J100", SubJobID: "S1", JobCode: "JC-TEST", Description: "Lid boxes",
	}).Error)

	for _, req := range []CompleteRequest{
		{JobID: "J100", SubJobID: "S1", ProcessID: ids["Printing"]},
		{JobID: "J100", SubJobID: "S1", ProcessID: ids["Sorting"]},
		{JobID: "J100", SubJobID: "S2", ProcessID: ids["Printing"]},
	} {
		_, err := work.Complete(testContext(), req, "EMP007")
		require.NoError(t, err)
	}
}

func groupKeys(groups []ReportGroup) []string {
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.JobID+"/"+g.SubJobID)
	}
	return keys
}

func TestReportAllGroupsAndRatios(t *testing.T) {
	database := newTestDB(t)
	seedReportFixture(t, database)
	svc := newReportService(database)

	report, err := svc.Build(testContext(), FilterAll, "")
	require.NoError(t, err)
	assert.Len(t, report.Rows, 5)
	require.Len(t, report.Groups, 3)

	byKey := make(map[string]ReportGroup)
	for _, g := range report.Groups {
		byKey[g.JobID+"/"+g.SubJobID] = g
	}

	done := byKey["J100/S1"]
	assert.Equal(t, 2, done.Completed)
	assert.Equal(t, 2, done.Total)
	assert.Equal(t, "Acme Cartons", done.CustomerName)
	assert.Equal(t, "Lid boxes", done.Description)

	mixed := byKey["J100/S2"]
	assert.Equal(t, 1, mixed.Completed)
	assert.Equal(t, 2, mixed.Total)

	pending := byKey["K200/S1"]
	assert.Equal(t, 0, pending.Completed)
	assert.Equal(t, 1, pending.Total)
}

func TestReportCompletedFilterExcludesMixedGroups(t *testing.T) {
	database := newTestDB(t)
	seedReportFixture(t, database)
	svc := newReportService(database)

	report, err := svc.Build(testContext(), FilterCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"J100/S1"}, groupKeys(report.Groups))
}

func TestReportPendingFilterExcludesMixedGroups(t *testing.T) {
	database := newTestDB(t)
	seedReportFixture(t, database)
	svc := newReportService(database)

	report, err := svc.Build(testContext(), FilterPending, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"K200/S1"}, groupKeys(report.Groups))
}

func TestReportSearchRunsBeforeStatusFilter(t *testing.T) {
	database := newTestDB(t)
	seedReportFixture(t, database)
	svc := newReportService(database)

	report, err := svc.Build(testContext(), FilterPending, "beta")
	require.NoError(t, err)
	assert.Equal(t, []string{"K200/S1"}, groupKeys(report.Groups))

	report, err = svc.Build(testContext(), FilterPending, "acme")
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
}

func TestReportRowRendering(t *testing.T) {
	database := newTestDB(t)
	seedReportFixture(t, database)
	svc := newReportService(database)

	report, err := svc.Build(testContext(), FilterAll, "")
	require.NoError(t, err)

	for _, row := range report.Rows {
		assert.NotEmpty(t, row.ProcessName)
		assert.NotContains(t, row.ProcessName, "Process ")
		if row.Status == models.JobProcessCompleted {
			assert.Equal(t, "EMP007", row.EmployeeCode)
			assert.Contains(t, row.CompletedBy, "EMP007 (")
		} else {
			assert.Empty(t, row.EmployeeCode)
			assert.Equal(t, "Not completed", row.CompletedBy)
		}
	}
}

func TestReportProcessNameFallback(t *testing.T) {
	database := newTestDB(t)
	svc := newReportService(database)
	seedWork(t, database, "J100", "Acme",
		models.JobProcess{SubJobID: "S1", ProcessID: 99})

	report, err := svc.Build(testContext(), FilterAll, "")
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Process 99", report.Rows[0].ProcessName)
}
