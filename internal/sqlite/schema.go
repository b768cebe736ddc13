package sqlite

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Schema DDL.
const (
	createContacts = `CREATE TABLE IF NOT EXISTS contacts (
    contact_id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    phone TEXT NOT NULL,
    email TEXT NOT NULL,
    company TEXT,
    address TEXT,
    birthday TEXT,
    notes TEXT,
    avatar TEXT,
    favorite INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);`

	idxContactsPosition = `CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);`
	idxContactsFavorite = `CREATE INDEX IF NOT EXISTS idx_contacts_favorite ON contacts(favorite);`
)

// schemaDDL lists every statement run on Attach, in order.
var schemaDDL = []string{
	createContacts,
	idxContactsPosition,
	idxContactsFavorite,
}

// contactColumns is the column order used by inserts and selects.
const contactColumns = `contact_id, position, first_name, last_name, phone, email,
    company, address, birthday, notes, avatar, favorite, updated_at`
