package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Tables are created parents first because of the foreign keys.
// Money columns are TEXT holding a 2-place decimal string so amounts round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    payment_handle TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pools (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pool_memberships (
    pool_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'member')),
    default_split_percentage TEXT NOT NULL DEFAULT '0',
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (pool_id, member_id),
    FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    split_method TEXT NOT NULL,
    is_settled INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    settled_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE,
    FOREIGN KEY (payer_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS expense_line_items (
    id TEXT PRIMARY KEY,
    expense_id TEXT NOT NULL,
    debtor_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    is_settled INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL,
    UNIQUE (expense_id, debtor_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE,
    FOREIGN KEY (debtor_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL,
    settled_by TEXT NOT NULL,
    line_item_count INTEGER NOT NULL,
    total_amount TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expense_category_rules (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL,
    pattern TEXT NOT NULL,
    category TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS activity_events (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL,
    actor_id TEXT NOT NULL DEFAULT '',
    event_type TEXT NOT NULL,
    event_data TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pool_memberships_member_id ON pool_memberships(member_id);
CREATE INDEX IF NOT EXISTS idx_expenses_pool_id ON expenses(pool_id, created_at);
CREATE INDEX IF NOT EXISTS idx_expense_line_items_expense_id ON expense_line_items(expense_id);
CREATE INDEX IF NOT EXISTS idx_expense_line_items_debtor_id ON expense_line_items(debtor_id);
CREATE INDEX IF NOT EXISTS idx_settlements_pool_id ON settlements(pool_id);
CREATE INDEX IF NOT EXISTS idx_expense_category_rules_member_id ON expense_category_rules(member_id, position);
CREATE INDEX IF NOT EXISTS idx_activity_events_pool_id ON activity_events(pool_id, created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
