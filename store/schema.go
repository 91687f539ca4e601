package store

// Schema holds the statements creating the engine tables. The migration in
// migrations/ applies them to the PocketBase database; tests apply them to
// throwaway SQLite files.
//
// The CHECK constraints are a backstop only: the inventory service's
// conditional update is the authoritative guard against overselling, and the
// commission split is computed so the amounts always reconcile.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		commission_rate INTEGER NOT NULL DEFAULT 0 CHECK (commission_rate BETWEEN 0 AND 100),
		currency        TEXT NOT NULL DEFAULT 'LAK',
		status          TEXT NOT NULL DEFAULT 'published',
		created         TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ticket_types (
		id                 TEXT PRIMARY KEY,
		event              TEXT NOT NULL REFERENCES events (id),
		name               TEXT NOT NULL,
		unit_price         TEXT NOT NULL,
		quantity_available INTEGER NOT NULL CHECK (quantity_available >= 0),
		quantity_sold      INTEGER NOT NULL DEFAULT 0,
		created            TIMESTAMP NOT NULL,
		CHECK (quantity_sold >= 0 AND quantity_sold <= quantity_available)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ticket_types_event ON ticket_types (event)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id                TEXT PRIMARY KEY,
		customer          TEXT NOT NULL,
		event             TEXT NOT NULL REFERENCES events (id),
		total_amount      INTEGER NOT NULL,
		commission_amount INTEGER NOT NULL,
		creator_amount    INTEGER NOT NULL,
		status            TEXT NOT NULL DEFAULT 'pending',
		gateway_ref       TEXT NOT NULL DEFAULT '',
		created           TIMESTAMP NOT NULL,
		updated           TIMESTAMP NOT NULL,
		CHECK (commission_amount + creator_amount = total_amount)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions (customer)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id          TEXT PRIMARY KEY,
		ticket_type TEXT NOT NULL REFERENCES ticket_types (id),
		customer    TEXT NOT NULL,
		txn         TEXT NOT NULL REFERENCES transactions (id),
		qr_nonce    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'active',
		created     TIMESTAMP NOT NULL,
		updated     TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tickets_txn ON tickets (txn)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_customer ON tickets (customer)`,
}

// DropSchema removes the engine tables. Used by the migration's down step.
var DropSchema = []string{
	`DROP TABLE IF EXISTS tickets`,
	`DROP TABLE IF EXISTS transactions`,
	`DROP TABLE IF EXISTS ticket_types`,
	`DROP TABLE IF EXISTS events`,
}
