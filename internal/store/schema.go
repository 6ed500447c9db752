package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scenarios (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL UNIQUE,
    document             TEXT NOT NULL,
    transitions          INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    id                   TEXT PRIMARY KEY,
    scenario_id          TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    ran_at               TEXT NOT NULL,
    periods              INTEGER NOT NULL,
    final_net_worth      REAL NOT NULL,
    retirement_date      TEXT,
    retirement_age       REAL,
    is_sustainable       INTEGER NOT NULL,
    warnings             INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario_id, ran_at);
`
