package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"projection-engine/internal/engine"
	"projection-engine/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "scenarios.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleConfig() model.SimulationConfiguration {
	cfg := model.DefaultConfiguration(model.NewDate(2025, 1, 1))
	amount := 9500.0
	cfg.Transitions = []model.ParameterTransition{{
		ID:            "raise",
		EffectiveDate: model.NewDate(2026, 7, 1),
		Changes:       model.ParameterChanges{Income: &model.IncomeChanges{Amount: &amount}},
	}}
	return cfg
}

func TestSaveLoadListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cfg := sampleConfig()

	saved, err := s.Save(ctx, "baseline", cfg)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := s.Load(ctx, "baseline")
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)
	require.Equal(t, cfg, got.Configuration)

	_, err = s.Save(ctx, "another", model.DefaultConfiguration(model.NewDate(2025, 1, 1)))
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "another", list[0].Name)
	require.Equal(t, "baseline", list[1].Name)
	require.Equal(t, 1, list[1].Transitions)

	require.NoError(t, s.Delete(ctx, "baseline"))
	_, err = s.Load(ctx, "baseline")
	require.True(t, errors.Is(err, ErrNotFound))
	require.True(t, errors.Is(s.Delete(ctx, "baseline"), ErrNotFound))
}

func TestSaveReplacesKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	first, err := s.Save(ctx, "plan", sampleConfig())
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	updated := sampleConfig()
	updated.Transitions = []model.ParameterTransition{}
	second, err := s.Save(ctx, "plan", updated)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	got, err := s.Load(ctx, "plan")
	require.NoError(t, err)
	require.Empty(t, got.Configuration.Transitions)
	require.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestInvalidImportLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	_, err := s.Save(ctx, "plan", sampleConfig())
	require.NoError(t, err)

	_, err = s.Import(ctx, "plan", []byte(`{"version": 9, "configuration": {}}`), false)
	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr))

	_, err = s.Import(ctx, "plan", []byte("version: 1\nconfiguration: [oops"), true)
	require.Error(t, err)

	got, err := s.Load(ctx, "plan")
	require.NoError(t, err)
	require.Equal(t, sampleConfig(), got.Configuration)
}

func TestSaveRejectsInvalidConfiguration(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cfg := sampleConfig()
	cfg.BaseParameters.Horizon.Years = 0

	_, err := s.Save(ctx, "bad", cfg)
	require.Error(t, err)
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cfg := sampleConfig()
	_, err := s.Save(ctx, "plan", cfg)
	require.NoError(t, err)

	res, err := engine.Run(cfg)
	require.NoError(t, err)

	run, err := s.RecordRun(ctx, "plan", res)
	require.NoError(t, err)
	require.Equal(t, len(res.States)-1, run.Periods)

	runs, err := s.Runs(ctx, "plan")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, run.ID, runs[0].ID)
	require.Equal(t, res.Final().NetWorth, runs[0].FinalNetWorth)
	require.Equal(t, res.IsSustainable, runs[0].IsSustainable)
	require.Equal(t, res.RetirementDate, runs[0].RetirementDate)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list[0].Runs)

	_, err = s.RecordRun(ctx, "missing", res)
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Delete(ctx, "plan"))
	runs, err = s.Runs(ctx, "plan")
	require.NoError(t, err)
	require.Empty(t, runs)
}
