package sqlite

import "database/sql"

// schema sets up the database tables. It runs on startup to ensure tables exist.
// Money and percentages are stored as decimal TEXT; timestamps as unix milliseconds.
// Contacts live in people with a NULL bill_id.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    date INTEGER NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    discount_percentage TEXT NOT NULL DEFAULT '0',
    service_charge_percentage TEXT NOT NULL DEFAULT '0',
    tax_percentage TEXT NOT NULL DEFAULT '0',
    currency TEXT NOT NULL,
    payee_name TEXT NOT NULL DEFAULT '',
    payee_method TEXT NOT NULL DEFAULT '',
    payee_details TEXT NOT NULL DEFAULT '',
    archived INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 1,
    notes TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    bill_id TEXT,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    payment_method TEXT NOT NULL DEFAULT '',
    payment_details TEXT NOT NULL DEFAULT '',
    is_contact INTEGER NOT NULL DEFAULT 0,
    has_paid INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER,
    payment_method_used TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_splits (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    percentage TEXT NOT NULL,
    is_manual_amount INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (item_id) REFERENCES bill_items(id) ON DELETE CASCADE,
    FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_bill_items_bill_id ON bill_items(bill_id);
CREATE INDEX IF NOT EXISTS idx_people_bill_id ON people(bill_id);
CREATE INDEX IF NOT EXISTS idx_people_is_contact ON people(is_contact);
CREATE INDEX IF NOT EXISTS idx_item_splits_item_id ON item_splits(item_id);
CREATE INDEX IF NOT EXISTS idx_item_splits_person_id ON item_splits(person_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
