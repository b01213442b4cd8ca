package repositories

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between the SQL engines the store runs on.
type Dialect struct {
	Name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	// statement run inside ReplaceCircuits to serialize work per mission;
	// empty when the transaction itself is already exclusive.
	lockMission string
	schema      []string
}

var Postgres = Dialect{
	Name:        "postgres",
	numbered:    true,
	lockMission: `SELECT pg_advisory_xact_lock(?)`,
	schema:      postgresSchema,
}

// Sqlite relies on BEGIN IMMEDIATE (see db.OpenSqlite) for mission locking.
var Sqlite = Dialect{
	Name:   "sqlite",
	schema: sqliteSchema,
}

// rebind rewrites ? placeholders for the dialect.
func (d Dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
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
