package sqlite

// Schema DDL. The database is a query cache rebuilt from JSONL on every
// Attach, so the schema is created fresh each time.
const (
	createRuns = `CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,
    linkage TEXT NOT NULL,
    joints TEXT NOT NULL,
    steps INTEGER NOT NULL DEFAULT 0,
    state TEXT NOT NULL,
    error TEXT,
    created_at TEXT NOT NULL,
    completed_at TEXT
);`

	createPositions = `CREATE TABLE positions (
    run_id TEXT NOT NULL,
    step INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    joint TEXT NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    angle REAL,
    PRIMARY KEY (run_id, step, ordinal),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxRunsCreated    = `CREATE INDEX idx_runs_created ON runs(created_at);`
	idxRunsLinkage    = `CREATE INDEX idx_runs_linkage ON runs(linkage);`
	idxPositionsJoint = `CREATE INDEX idx_positions_joint ON positions(run_id, joint);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createRuns,
	createPositions,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRunsCreated,
	idxRunsLinkage,
	idxPositionsJoint,
}
