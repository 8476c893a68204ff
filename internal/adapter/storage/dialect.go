package storage

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the SQL differences between the supported item stores.
type Dialect struct {
	Name       string
	DriverName string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	likeOp   string
	upsert   string
	schema   string
}

var (
	MySQL = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		likeOp:     "LIKE",
		upsert: `
		INSERT INTO flash_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			activity_id = VALUES(activity_id), title = VALUES(title), sub_title = VALUES(sub_title),
			description = VALUES(description), original_price = VALUES(original_price),
			flash_price = VALUES(flash_price), initial_stock = VALUES(initial_stock),
			status = VALUES(status), start_time = VALUES(start_time), end_time = VALUES(end_time),
			updated_at = VALUES(updated_at)`,
		schema: mysqlSchema,
	}

	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		numbered:   true,
		likeOp:     "ILIKE",
		upsert:     "INSERT INTO flash_items (" + itemColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" + onConflictUpdate,
		schema:     postgresSchema,
	}

	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		likeOp:     "LIKE",
		upsert:     "INSERT INTO flash_items (" + itemColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" + onConflictUpdate,
		schema:     sqliteSchema,
	}
)

// available_stock is not listed: once the row exists only stock operations touch it.
const onConflictUpdate = `
		ON CONFLICT (id) DO UPDATE SET
			activity_id = excluded.activity_id, title = excluded.title, sub_title = excluded.sub_title,
			description = excluded.description, original_price = excluded.original_price,
			flash_price = excluded.flash_price, initial_stock = excluded.initial_stock,
			status = excluded.status, start_time = excluded.start_time, end_time = excluded.end_time,
			updated_at = excluded.updated_at`

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case MySQL.Name:
		return MySQL, nil
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported store driver %q", name)
}

// rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
