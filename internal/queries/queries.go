package queries

import (
	"fmt"
	"strings"
)

// Dialect decides how bind parameters are spelled.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return `?`
	}
	return fmt.Sprintf(`$%d`, n)
}

func (d Dialect) placeholders(count int) string {
	list := make([]string, count)
	for i := range list {
		list[i] = d.Placeholder(i + 1)
	}
	return strings.Join(list, `, `)
}

// Select reads one column of the row whose first key column matches.
func Select(d Dialect, table, column, key string) string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s = %s`, column, table, key, d.Placeholder(1))
}

// Upsert inserts a row or, when the first column collides, overwrites the
// remaining columns.
func Upsert(d Dialect, table string, columns ...string) string {
	if len(columns) < 2 {
		panic(`upsert needs a key and at least one value column`)
	}

	updates := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		updates = append(updates, fmt.Sprintf(`%s = EXCLUDED.%s`, c, c))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES(%s)\n\tON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(columns, `, `), d.placeholders(len(columns)), columns[0], strings.Join(updates, `, `))
}

func Delete(d Dialect, table, key string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE %s = %s`, table, key, d.Placeholder(1))
}

// KV holds the statements of the kv_store table shared by the SQL backends.
type KV struct {
	Load   string
	Save   string
	Delete string
}

func KVStore(d Dialect) KV {
	const table = `kv_store`
	return KV{
		Load:   Select(d, table, `value`, `key`),
		Save:   Upsert(d, table, `key`, `value`, `updated_at`),
		Delete: Delete(d, table, `key`),
	}
}
