package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/attribution-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleReport() *model.AttributionReport {
	return &model.AttributionReport{
		ProcessingDate:    time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		TotalClients:      2,
		AttributedClients: 1,
		AttributionRate:   "50.0%",
		AttributionBreakdown: map[model.Source]int{
			model.SourceEmailOld:     1,
			model.SourceEmailNew:     0,
			model.SourceInstagram:    0,
			model.SourceAudit:        0,
			model.SourceUnattributed: 1,
		},
		RevenueBreakdown: map[model.Source]float64{
			model.SourceEmailOld:     150,
			model.SourceEmailNew:     0,
			model.SourceInstagram:    0,
			model.SourceAudit:        0,
			model.SourceUnattributed: 80,
		},
		Decisions: []model.AttributionDecision{
			{
				Client:     model.Client{Email: "a@example.com", SignupDate: "15/03/2025", Revenue: 150},
				Source:     model.SourceEmailOld,
				Method:     model.MethodEmailOld,
				Confidence: 0.90,
				Evidence:   &model.Evidence{DaysDifference: 14, Version: model.VersionV1},
			},
			{
				Client: model.Client{Email: "b@example.com", SignupDate: "20/03/2025", Revenue: 80},
				Source: model.SourceUnattributed,
				Method: model.MethodNone,
			},
		},
	}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Report)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.GetRun(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLite_SaveReport(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)

	require.NoError(t, st.SaveReport(ctx, run.ID, sampleReport()))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, 2, got.Report.TotalClients)
	assert.Equal(t, "50.0%", got.Report.AttributionRate)
	require.Len(t, got.Report.Decisions, 2)
	assert.Equal(t, model.SourceEmailOld, got.Report.Decisions[0].Source)
	require.NotNil(t, got.Report.Decisions[0].Evidence)
	assert.Equal(t, 14, got.Report.Decisions[0].Evidence.DaysDifference)
}

func TestSQLite_SaveReport_DecisionRows(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.SaveReport(ctx, run.ID, sampleReport()))

	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decisions WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 2, count)

	var clients int
	var revenue float64
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT clients, revenue FROM channel_stats WHERE run_id = ? AND source = ?`,
		run.ID, string(model.SourceEmailOld)).Scan(&clients, &revenue))
	assert.Equal(t, 1, clients)
	assert.InDelta(t, 150.0, revenue, 0.001)
}

func TestSQLite_SaveReport_Idempotent(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.SaveReport(ctx, run.ID, sampleReport()))
	require.NoError(t, st.SaveReport(ctx, run.ID, sampleReport()))

	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decisions WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLite_SaveReport_DuplicateClientEmails(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)

	// The same email can appear twice in one bundle; each occurrence keeps
	// its own decision row.
	report := sampleReport()
	report.Decisions = []model.AttributionDecision{
		{
			Client:     model.Client{Email: "dup@example.com", Revenue: 100},
			Source:     model.SourceEmailOld,
			Method:     model.MethodEmailOld,
			Confidence: 0.90,
		},
		{
			Client: model.Client{Email: "dup@example.com", Revenue: 50},
			Source: model.SourceUnattributed,
			Method: model.MethodNone,
		},
	}
	require.NoError(t, st.SaveReport(ctx, run.ID, report))

	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decisions WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 2, count)

	var first, second string
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT source FROM decisions WHERE run_id = ? AND seq = 0`, run.ID).Scan(&first))
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT source FROM decisions WHERE run_id = ? AND seq = 1`, run.ID).Scan(&second))
	assert.Equal(t, string(model.SourceEmailOld), first)
	assert.Equal(t, string(model.SourceUnattributed), second)
}

func TestSQLite_SaveReport_MissingRun(t *testing.T) {
	st := newTestSQLite(t)
	err := st.SaveReport(context.Background(), "nope", sampleReport())
	assert.Error(t, err)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, run.ID, "source unreachable"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "source unreachable", got.Error)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx)
	require.NoError(t, err)
	r2, err := st.CreateRun(ctx)
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, r2.ID, "boom"))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, r2.ID, failed[0].ID)

	running, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, r1.ID, running[0].ID)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	for range 5 {
		_, err := st.CreateRun(ctx)
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLite_ListRuns_CreatedAfter(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx)
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{CreatedAfter: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, runs)
}
