package model

import "gorm.io/gorm"

// openPairIndexSQL — частичный уникальный индекс: не больше одного открытого
// контракта на пару клиент/исполнитель. Поддерживается и Postgres, и SQLite.
const openPairIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_contracts_open_pair
ON contracts (client_id, provider_id)
WHERE status IN ('pending', 'offered', 'active', 'disputed')`

// sqliteSchema — sqlite-friendly схема. Теги моделей завязаны на Postgres
// (gen_random_uuid(), now(), jsonb), поэтому AutoMigrate для SQLite не годится.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT,
		contact_phone TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		role_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (role_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS providers (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		service_title TEXT NOT NULL,
		service_rate TEXT NOT NULL,
		description TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		provider_id TEXT NOT NULL,
		service_title TEXT NOT NULL,
		service_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		client_deposited BOOLEAN NOT NULL DEFAULT 0,
		client_action TEXT NOT NULL DEFAULT 'none',
		provider_action TEXT NOT NULL DEFAULT 'none',
		commission_rate TEXT NOT NULL,
		dispute_resolution TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_provider_id ON contracts (provider_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		pair_key TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair_key ON messages (pair_key)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		provider_amount TEXT NOT NULL,
		client_refund TEXT NOT NULL,
		platform_commission TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		created_at DATETIME,
		user_id TEXT,
		contract_id TEXT,
		details TEXT
	)`,
}

// AutoMigrate выполняет миграцию всех сущностей маркетплейса.
func AutoMigrate(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		return migrateSQLite(db)
	}
	if err := db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&Provider{},
		&Contract{},
		&Message{},
		&Settlement{},
		&Event{},
	); err != nil {
		return err
	}
	return db.Exec(openPairIndexSQL).Error
}

func migrateSQLite(db *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return db.Exec(openPairIndexSQL).Error
}
