package db

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"expense_tracker/internal/config"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	sqliteDriverName = "sqlite"
	mysqlDriverName  = "mysql"
)

// Open connects to the configured datastore, applies pending migrations and
// verifies the connection. The returned pool is ready for repositories.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return openSQLite(cfg.Path)
	case config.DriverMySQL:
		return openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	if err := RunMigrations(sqliteDriverName, path); err != nil {
		return nil, err
	}

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// MySQLDSN renders the driver DSN. Dates are scanned as strings, so parseTime stays off.
func MySQLDSN(cfg config.DBConfig, multiStatements bool) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.Timeout = cfg.Timeout
	mc.ReadTimeout = cfg.Timeout
	mc.WriteTimeout = cfg.Timeout
	mc.MultiStatements = multiStatements
	return mc.FormatDSN()
}

func openMySQL(cfg config.DBConfig) (*sql.DB, error) {
	if err := RunMigrations(mysqlDriverName, MySQLDSN(cfg, true)); err != nil {
		return nil, err
	}

	db, err := sql.Open(mysqlDriverName, MySQLDSN(cfg, false))
	if err != nil {
		return nil, fmt.Errorf("open mysql at %s: %w", cfg.Host, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
