// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/HealthDash/HealthDash/internal/config"
)

// DefaultSQLitePath is used when an sqlite engine has no path configured.
const DefaultSQLitePath = "healthdash.db"

// Create builds the Data Source Name for the configured engine.
func Create(db *config.DB) string {
	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host,
			db.Port,
			db.User,
			db.Password,
			db.Name,
		)

		if db.Extras != "" {
			out += " " + db.Extras
		}

		return out
	case config.EngineMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		)
	}

	if db.Path == "" {
		return DefaultSQLitePath
	}

	return db.Path
}

// URI builds the connection string the fiber storage drivers expect.
func URI(db *config.DB) string {
	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", db.User, db.Password, db.Host, db.Port, db.Name)
		if db.Extras != "" {
			out += "?" + strings.ReplaceAll(db.Extras, " ", "&")
		}

		return out
	case config.EngineMySQL:
		// the mysql storage hands the URI to go-sql-driver unchanged
		return Create(db)
	}

	return ""
}
