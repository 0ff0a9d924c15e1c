package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// entityTables maps every event-sourced entity table to its
// domain-specific columns. The shared entity head columns and the
// matching *_events table are generated for each.
var entityTables = []struct {
	name string
	cols string
}{
	{"workspaces", `
		name TEXT NOT NULL,
		default_project_ref INTEGER,
		feature_flags TEXT NOT NULL,
		working_mem_period TEXT NOT NULL,
		journal_period TEXT NOT NULL`},
	{"users", `
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		timezone TEXT NOT NULL,
		feature_flags TEXT NOT NULL`},
	{"projects", `
		workspace_ref INTEGER NOT NULL,
		parent_project_ref INTEGER,
		name TEXT NOT NULL`},
	{"inbox_tasks", `
		workspace_ref INTEGER NOT NULL,
		project_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		eisen TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		source TEXT NOT NULL,
		source_entity_ref INTEGER,
		big_plan_ref INTEGER,
		actionable_date TEXT,
		due_date TEXT,
		recurring_gen_right_now TEXT,
		recurring_timeline TEXT,
		recurring_repeat_index INTEGER`},
	{"habits", `
		workspace_ref INTEGER NOT NULL,
		project_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		gen_period TEXT NOT NULL,
		gen_eisen TEXT NOT NULL,
		gen_difficulty TEXT NOT NULL,
		gen_actionable_from_day INTEGER,
		gen_actionable_from_month INTEGER,
		gen_due_at_day INTEGER,
		gen_due_at_month INTEGER,
		gen_skip_rule TEXT,
		suspended INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		repeats_in_period INTEGER`},
	{"chores", `
		workspace_ref INTEGER NOT NULL,
		project_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		gen_period TEXT NOT NULL,
		gen_eisen TEXT NOT NULL,
		gen_difficulty TEXT NOT NULL,
		gen_actionable_from_day INTEGER,
		gen_actionable_from_month INTEGER,
		gen_due_at_day INTEGER,
		gen_due_at_month INTEGER,
		gen_skip_rule TEXT,
		suspended INTEGER NOT NULL DEFAULT 0,
		must_do INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT`},
	{"metrics", `
		workspace_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		unit TEXT,
		gen_period TEXT,
		gen_eisen TEXT,
		gen_difficulty TEXT,
		gen_actionable_from_day INTEGER,
		gen_actionable_from_month INTEGER,
		gen_due_at_day INTEGER,
		gen_due_at_month INTEGER,
		gen_skip_rule TEXT`},
	{"metric_entries", `
		metric_ref INTEGER NOT NULL,
		collection_time TEXT NOT NULL,
		value REAL NOT NULL,
		notes TEXT`},
	{"persons", `
		workspace_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		relationship TEXT NOT NULL,
		gen_period TEXT,
		gen_eisen TEXT,
		gen_difficulty TEXT,
		gen_actionable_from_day INTEGER,
		gen_actionable_from_month INTEGER,
		gen_due_at_day INTEGER,
		gen_due_at_month INTEGER,
		gen_skip_rule TEXT,
		birthday_month INTEGER,
		birthday_day INTEGER`},
	{"vacations", `
		workspace_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL`},
	{"big_plans", `
		workspace_ref INTEGER NOT NULL,
		project_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		actionable_date TEXT,
		due_date TEXT`},
	{"journals", `
		workspace_ref INTEGER NOT NULL,
		right_now TEXT NOT NULL,
		period TEXT NOT NULL,
		timeline TEXT NOT NULL,
		report TEXT`},
	{"time_plans", `
		workspace_ref INTEGER NOT NULL,
		right_now TEXT NOT NULL,
		period TEXT NOT NULL,
		timeline TEXT NOT NULL`},
	{"time_plan_activities", `
		time_plan_ref INTEGER NOT NULL,
		target TEXT NOT NULL,
		target_ref INTEGER NOT NULL,
		kind TEXT NOT NULL,
		feasibility TEXT NOT NULL`},
	{"working_mem_entries", `
		workspace_ref INTEGER NOT NULL,
		right_now TEXT NOT NULL,
		period TEXT NOT NULL,
		timeline TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT ''`},
	{"notes", `
		workspace_ref INTEGER NOT NULL,
		source_kind TEXT NOT NULL,
		source_ref INTEGER NOT NULL,
		content TEXT NOT NULL DEFAULT ''`},
	{"schedule_streams", `
		workspace_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		ical_url TEXT`},
	{"schedule_events", `
		stream_ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		external_uid TEXT,
		raw_ical TEXT`},
	{"push_tasks", `
		workspace_ref INTEGER NOT NULL,
		kind TEXT NOT NULL,
		sender TEXT NOT NULL,
		channel TEXT,
		subject TEXT,
		body TEXT NOT NULL,
		gen_period TEXT,
		gen_eisen TEXT,
		gen_difficulty TEXT,
		gen_actionable_from_day INTEGER,
		gen_actionable_from_month INTEGER,
		gen_due_at_day INTEGER,
		gen_due_at_month INTEGER,
		gen_skip_rule TEXT`},
	{"score_log_entries", `
		user_ref INTEGER NOT NULL,
		source TEXT NOT NULL,
		task_ref INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		success INTEGER NOT NULL,
		score INTEGER NOT NULL`},
}

const entityHeadCols = `
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL,
		archived INTEGER NOT NULL DEFAULT 0,
		archived_reason TEXT,
		created_at DATETIME NOT NULL,
		last_modified_at DATETIME NOT NULL,
		archived_at DATETIME,`

var indexStmts = []string{
	`CREATE INDEX IF NOT EXISTS idx_projects_workspace ON projects(workspace_ref);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_parent ON projects(parent_project_ref);`,
	`CREATE INDEX IF NOT EXISTS idx_inbox_tasks_workspace ON inbox_tasks(workspace_ref);`,
	`CREATE INDEX IF NOT EXISTS idx_inbox_tasks_project ON inbox_tasks(project_ref);`,
	`CREATE INDEX IF NOT EXISTS idx_inbox_tasks_source ON inbox_tasks(source, source_entity_ref);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_inbox_tasks_gen_key
		ON inbox_tasks(source, source_entity_ref, recurring_timeline, ifnull(recurring_repeat_index, -1))
		WHERE source_entity_ref IS NOT NULL AND recurring_timeline IS NOT NULL AND archived = 0;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_journals_timeline
		ON journals(workspace_ref, period, timeline) WHERE archived = 0;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_time_plans_timeline
		ON time_plans(workspace_ref, period, timeline) WHERE archived = 0;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_working_mem_timeline
		ON working_mem_entries(workspace_ref, period, timeline) WHERE archived = 0;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_target
		ON time_plan_activities(time_plan_ref, target, target_ref) WHERE archived = 0;`,
	`CREATE INDEX IF NOT EXISTS idx_notes_source ON notes(source_kind, source_ref);`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_events_stream ON schedule_events(stream_ref);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_score_entries_task
		ON score_log_entries(user_ref, source, task_ref);`,
}

const scoreStatsTable = `CREATE TABLE IF NOT EXISTS score_stats (
		user_ref INTEGER NOT NULL,
		period TEXT NOT NULL,
		timeline TEXT NOT NULL,
		total_score INTEGER NOT NULL DEFAULT 0,
		inbox_task_cnt INTEGER NOT NULL DEFAULT 0,
		big_plan_cnt INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_ref, period, timeline)
	);`

const searchIndexTable = `CREATE TABLE IF NOT EXISTS search_index (
		kind TEXT NOT NULL,
		ref INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (kind, ref)
	);`

const genLogTable = `CREATE TABLE IF NOT EXISTS gen_log_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_ref INTEGER NOT NULL,
		source TEXT NOT NULL,
		today TEXT NOT NULL,
		gen_targets TEXT NOT NULL,
		created_cnt INTEGER NOT NULL,
		updated_cnt INTEGER NOT NULL,
		archived_cnt INTEGER NOT NULL,
		errors TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`

// Migrate bootstraps and evolves the store. Events tables are insert
// only; entity rows are updated in place with the new version.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, table := range entityTables {
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s%s\n\t);", table.name, entityHeadCols, table.cols)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", table.name, err)
		}
		events := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_ref INTEGER NOT NULL,
			timestamp DATETIME NOT NULL,
			session_index INTEGER NOT NULL,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			owner_version INTEGER NOT NULL,
			kind TEXT NOT NULL,
			data TEXT,
			FOREIGN KEY(owner_ref) REFERENCES %s(id)
		);`, table.name, table.name)
		if _, err := db.ExecContext(ctx, events); err != nil {
			return fmt.Errorf("migrate %s_events: %w", table.name, err)
		}
	}

	for _, stmt := range []string{scoreStatsTable, genLogTable, searchIndexTable} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	for _, stmt := range indexStmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate index: %w", err)
		}
	}

	return nil
}
