// Package postgres reads run records and business-day rows from the Postgres
// monitoring database.
package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS monitor (
    id          BIGSERIAL PRIMARY KEY,
    scenario    TEXT NOT NULL,
    data_dt     DATE NOT NULL,
    run_group   TEXT NOT NULL,
    run_name    TEXT NOT NULL,
    run_type    TEXT NOT NULL,
    run_status  INTEGER NOT NULL,
    asofdate    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_monitor_lookup
    ON monitor (scenario, data_dt, run_group, run_name, run_type);

CREATE TABLE IF NOT EXISTS calendar (
    scenario   TEXT NOT NULL,
    data_dt    DATE NOT NULL,
    curr_bday  DATE NOT NULL,
    prev_bday  DATE NOT NULL,
    next_bday  DATE NOT NULL,
    PRIMARY KEY (scenario, data_dt)
);
`
