// Package store keeps a library of named scenarios in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"projection-engine/internal/document"
	"projection-engine/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no scenario has the requested name.
var ErrNotFound = errors.New("scenario not found")

// Store is a SQLite-backed scenario library.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Scenario is a saved configuration.
type Scenario struct {
	ID            string
	Name          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Configuration model.SimulationConfiguration
}

// Summary is one row of the library listing.
type Summary struct {
	ID          string
	Name        string
	Transitions int
	UpdatedAt   time.Time
	Runs        int
}

// RunSummary records the headline outcome of one run of a scenario.
type RunSummary struct {
	ID             string
	RanAt          time.Time
	Periods        int
	FinalNetWorth  float64
	RetirementDate *model.Date
	RetirementAge  *float64
	IsSustainable  bool
	Warnings       int
}

// Open opens or creates the library database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the store database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores cfg under name, replacing any scenario already saved there.
// Invalid configurations are rejected before anything is written.
func (s *Store) Save(ctx context.Context, name string, cfg model.SimulationConfiguration) (Scenario, error) {
	if name == "" {
		return Scenario{}, &model.ValidationError{Code: model.CodeInvalidValue, Field: "name", Message: "scenario name is required"}
	}
	now := s.now().UTC()
	data, err := document.Export(cfg, now)
	if err != nil {
		return Scenario{}, err
	}
	// Re-import so only documents that load back cleanly are ever stored.
	checked, err := document.Import(data)
	if err != nil {
		return Scenario{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Scenario{}, err
	}
	defer func() { _ = tx.Rollback() }()

	sc := Scenario{Name: name, UpdatedAt: now, Configuration: checked}
	var created string
	err = tx.QueryRowContext(ctx, "SELECT id, created_at FROM scenarios WHERE name = ?", name).Scan(&sc.ID, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		sc.ID = uuid.New().String()
		sc.CreatedAt = now
		_, err = tx.ExecContext(ctx, `INSERT INTO scenarios
			(id, name, document, transitions, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sc.ID, name, string(data), len(checked.Transitions), formatTime(now), formatTime(now),
		)
	case err == nil:
		sc.CreatedAt = parseTime(created)
		_, err = tx.ExecContext(ctx, `UPDATE scenarios
			SET document = ?, transitions = ?, updated_at = ?
			WHERE id = ?`,
			string(data), len(checked.Transitions), formatTime(now), sc.ID,
		)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("saving scenario %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Import parses a JSON or YAML document and saves it under name. A document
// that fails to parse or validate leaves the library untouched.
func (s *Store) Import(ctx context.Context, name string, data []byte, yamlFormat bool) (Scenario, error) {
	var (
		cfg model.SimulationConfiguration
		err error
	)
	if yamlFormat {
		cfg, err = document.ImportYAML(data)
	} else {
		cfg, err = document.Import(data)
	}
	if err != nil {
		return Scenario{}, err
	}
	return s.Save(ctx, name, cfg)
}

// Load returns the scenario saved under name.
func (s *Store) Load(ctx context.Context, name string) (Scenario, error) {
	var sc Scenario
	var data, created, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, document, created_at, updated_at FROM scenarios WHERE name = ?", name,
	).Scan(&sc.ID, &sc.Name, &data, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Scenario{}, err
	}
	sc.Configuration, err = document.Import([]byte(data))
	if err != nil {
		return Scenario{}, fmt.Errorf("decoding scenario %q: %w", name, err)
	}
	sc.CreatedAt = parseTime(created)
	sc.UpdatedAt = parseTime(updated)
	return sc, nil
}

// List returns every saved scenario ordered by name.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		s.id, s.name, s.transitions, s.updated_at, COUNT(r.id)
		FROM scenarios s LEFT JOIN runs r ON r.scenario_id = s.id
		GROUP BY s.id
		ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Transitions, &updated, &sum.Runs); err != nil {
			return nil, err
		}
		sum.UpdatedAt = parseTime(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the scenario and its run history.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM scenarios WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// RecordRun appends the outcome of a run to the scenario's history.
func (s *Store) RecordRun(ctx context.Context, name string, res model.SimulationResult) (RunSummary, error) {
	if len(res.States) == 0 {
		return RunSummary{}, errors.New("cannot record an empty run")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunSummary{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var scenarioID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM scenarios WHERE name = ?", name).Scan(&scenarioID)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return RunSummary{}, err
	}

	run := RunSummary{
		ID:             uuid.New().String(),
		RanAt:          s.now().UTC(),
		Periods:        len(res.States) - 1,
		FinalNetWorth:  res.Final().NetWorth,
		RetirementDate: res.RetirementDate,
		RetirementAge:  res.RetirementAge,
		IsSustainable:  res.IsSustainable,
		Warnings:       len(res.Warnings),
	}

	var retirementDate sql.NullString
	var retirementAge sql.NullFloat64
	if run.RetirementDate != nil {
		retirementDate = sql.NullString{String: run.RetirementDate.String(), Valid: true}
	}
	if run.RetirementAge != nil {
		retirementAge = sql.NullFloat64{Float64: *run.RetirementAge, Valid: true}
	}
	sustainable := 0
	if run.IsSustainable {
		sustainable = 1
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, scenario_id, ran_at, periods, final_net_worth, retirement_date, retirement_age, is_sustainable, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, scenarioID, formatTime(run.RanAt), run.Periods, run.FinalNetWorth,
		retirementDate, retirementAge, sustainable, run.Warnings,
	)
	if err != nil {
		return RunSummary{}, fmt.Errorf("recording run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return RunSummary{}, err
	}
	return run, nil
}

// Runs returns the run history of a scenario, oldest first.
func (s *Store) Runs(ctx context.Context, name string) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		r.id, r.ran_at, r.periods, r.final_net_worth, r.retirement_date, r.retirement_age, r.is_sustainable, r.warnings
		FROM runs r JOIN scenarios s ON s.id = r.scenario_id
		WHERE s.name = ?
		ORDER BY r.ran_at, r.rowid`, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var run RunSummary
		var ranAt string
		var retirementDate sql.NullString
		var retirementAge sql.NullFloat64
		var sustainable int
		if err := rows.Scan(&run.ID, &ranAt, &run.Periods, &run.FinalNetWorth,
			&retirementDate, &retirementAge, &sustainable, &run.Warnings); err != nil {
			return nil, err
		}
		run.RanAt = parseTime(ranAt)
		run.IsSustainable = sustainable != 0
		if retirementDate.Valid {
			if d, err := model.ParseDate(retirementDate.String); err == nil {
				run.RetirementDate = &d
			}
		}
		if retirementAge.Valid {
			age := retirementAge.Float64
			run.RetirementAge = &age
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
