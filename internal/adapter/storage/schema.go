package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS flash_items (
    id              VARCHAR(64)    NOT NULL PRIMARY KEY,
    activity_id     VARCHAR(64)    NOT NULL DEFAULT '',
    title           VARCHAR(255)   NOT NULL,
    sub_title       VARCHAR(255)   NOT NULL DEFAULT '',
    description     TEXT           NOT NULL,
    original_price  DECIMAL(12,2)  NOT NULL,
    flash_price     DECIMAL(12,2)  NOT NULL,
    initial_stock   BIGINT         NOT NULL,
    available_stock BIGINT         NOT NULL CHECK (available_stock >= 0),
    status          VARCHAR(16)    NOT NULL,
    start_time      DATETIME(3)    NOT NULL,
    end_time        DATETIME(3)    NOT NULL,
    created_at      DATETIME(3)    NOT NULL,
    updated_at      DATETIME(3)    NOT NULL,
    INDEX idx_flash_items_activity (activity_id),
    INDEX idx_flash_items_status (status)
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS flash_items (
    id              TEXT           PRIMARY KEY,
    activity_id     TEXT           NOT NULL DEFAULT '',
    title           TEXT           NOT NULL,
    sub_title       TEXT           NOT NULL DEFAULT '',
    description     TEXT           NOT NULL DEFAULT '',
    original_price  NUMERIC(12,2)  NOT NULL,
    flash_price     NUMERIC(12,2)  NOT NULL,
    initial_stock   BIGINT         NOT NULL,
    available_stock BIGINT         NOT NULL CHECK (available_stock >= 0),
    status          TEXT           NOT NULL,
    start_time      TIMESTAMPTZ    NOT NULL,
    end_time        TIMESTAMPTZ    NOT NULL,
    created_at      TIMESTAMPTZ    NOT NULL,
    updated_at      TIMESTAMPTZ    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flash_items_activity ON flash_items(activity_id);
CREATE INDEX IF NOT EXISTS idx_flash_items_status ON flash_items(status);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS flash_items (
    id              TEXT     PRIMARY KEY,
    activity_id     TEXT     NOT NULL DEFAULT '',
    title           TEXT     NOT NULL,
    sub_title       TEXT     NOT NULL DEFAULT '',
    description     TEXT     NOT NULL DEFAULT '',
    original_price  TEXT     NOT NULL,
    flash_price     TEXT     NOT NULL,
    initial_stock   INTEGER  NOT NULL,
    available_stock INTEGER  NOT NULL CHECK (available_stock >= 0),
    status          TEXT     NOT NULL CHECK (status IN ('DRAFT', 'PUBLISHED', 'ONLINE', 'OFFLINE')),
    start_time      DATETIME NOT NULL,
    end_time        DATETIME NOT NULL,
    created_at      DATETIME NOT NULL,
    updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flash_items_activity ON flash_items(activity_id);
CREATE INDEX IF NOT EXISTS idx_flash_items_status ON flash_items(status);
`

// EnsureSchema creates the flash_items table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	// MySQL refuses multiple statements per Exec unless the DSN enables it.
	for _, stmt := range strings.Split(d.schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating %s schema: %w", d.Name, err)
		}
	}
	return nil
}
