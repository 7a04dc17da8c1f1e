// ABOUTME: Per-backend SQL text for schema, CRUD, and introspection
// ABOUTME: Collapses the embedded/networked branching into one dialect seam

package store

// dialect supplies the SQL that differs between backends: DDL column types,
// placeholder style, conflict-ignoring insert and upsert syntax, and the
// introspection queries used for legacy-schema detection. Everything else in
// the store is backend-agnostic.
type dialect interface {
	name() string

	createCollections() string
	createPrefs() string
	dropCollections() string
	dropPrefs() string

	insertItem() string      // (user_id, item_kind), silently no-ops on the unique pair
	deleteUserItems() string // (user_id)
	selectUserItems() string // (user_id) -> item_kind
	selectAllItems() string  // -> user_id, item_kind
	upsertPref() string      // (user_id, suppressed)
	selectSuppressed() string
	countCollections() string

	collectionsExists() string  // -> count
	collectionsColumns() string // -> column name, pk flag (1 when part of the primary key)
}

type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite" }

func (sqliteDialect) createCollections() string {
	return `
		CREATE TABLE IF NOT EXISTS collections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id VARCHAR(36) NOT NULL,
			item_kind VARCHAR(100) NOT NULL,
			collected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, item_kind)
		)
	`
}

func (sqliteDialect) createPrefs() string {
	return `
		CREATE TABLE IF NOT EXISTS notification_prefs (
			user_id VARCHAR(36) PRIMARY KEY,
			suppressed BOOLEAN DEFAULT FALSE
		)
	`
}

func (sqliteDialect) dropCollections() string { return `DROP TABLE IF EXISTS collections` }
func (sqliteDialect) dropPrefs() string       { return `DROP TABLE IF EXISTS notification_prefs` }

func (sqliteDialect) insertItem() string {
	return `INSERT OR IGNORE INTO collections (user_id, item_kind) VALUES (?, ?)`
}

func (sqliteDialect) deleteUserItems() string {
	return `DELETE FROM collections WHERE user_id = ?`
}

func (sqliteDialect) selectUserItems() string {
	return `SELECT item_kind FROM collections WHERE user_id = ?`
}

func (sqliteDialect) selectAllItems() string {
	return `SELECT user_id, item_kind FROM collections`
}

func (sqliteDialect) upsertPref() string {
	return `
		INSERT INTO notification_prefs (user_id, suppressed) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET suppressed = excluded.suppressed
	`
}

func (sqliteDialect) selectSuppressed() string {
	return `SELECT user_id FROM notification_prefs WHERE suppressed = TRUE`
}

func (sqliteDialect) countCollections() string {
	return `SELECT COUNT(*) FROM collections`
}

func (sqliteDialect) collectionsExists() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'collections'`
}

func (sqliteDialect) collectionsColumns() string {
	return `SELECT name, pk FROM pragma_table_info('collections')`
}

type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) createCollections() string {
	return `
		CREATE TABLE IF NOT EXISTS collections (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			item_kind VARCHAR(100) NOT NULL,
			collected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, item_kind)
		)
	`
}

func (postgresDialect) createPrefs() string {
	return `
		CREATE TABLE IF NOT EXISTS notification_prefs (
			user_id VARCHAR(36) PRIMARY KEY,
			suppressed BOOLEAN DEFAULT FALSE
		)
	`
}

func (postgresDialect) dropCollections() string { return `DROP TABLE IF EXISTS collections` }
func (postgresDialect) dropPrefs() string       { return `DROP TABLE IF EXISTS notification_prefs` }

func (postgresDialect) insertItem() string {
	return `INSERT INTO collections (user_id, item_kind) VALUES ($1, $2) ON CONFLICT (user_id, item_kind) DO NOTHING`
}

func (postgresDialect) deleteUserItems() string {
	return `DELETE FROM collections WHERE user_id = $1`
}

func (postgresDialect) selectUserItems() string {
	return `SELECT item_kind FROM collections WHERE user_id = $1`
}

func (postgresDialect) selectAllItems() string {
	return `SELECT user_id, item_kind FROM collections`
}

func (postgresDialect) upsertPref() string {
	return `
		INSERT INTO notification_prefs (user_id, suppressed) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET suppressed = EXCLUDED.suppressed
	`
}

func (postgresDialect) selectSuppressed() string {
	return `SELECT user_id FROM notification_prefs WHERE suppressed = TRUE`
}

func (postgresDialect) countCollections() string {
	return `SELECT COUNT(*) FROM collections`
}

func (postgresDialect) collectionsExists() string {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'collections'`
}

func (postgresDialect) collectionsColumns() string {
	return `
		SELECT c.column_name,
		       CASE WHEN kcu.column_name IS NOT NULL THEN 1 ELSE 0 END AS pk
		FROM information_schema.columns c
		LEFT JOIN information_schema.table_constraints tc
		       ON tc.table_name = c.table_name
		      AND tc.table_schema = c.table_schema
		      AND tc.constraint_type = 'PRIMARY KEY'
		LEFT JOIN information_schema.key_column_usage kcu
		       ON kcu.constraint_name = tc.constraint_name
		      AND kcu.table_schema = tc.table_schema
		      AND kcu.column_name = c.column_name
		WHERE c.table_schema = current_schema() AND c.table_name = 'collections'
	`
}
