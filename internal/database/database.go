// Package database reads the attribute table from an Oracle database instead
// of a CSV file. The table must carry the same raw columns as the CSV extract.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	_ "github.com/sijms/go-ora/v2"
)

// DBConfig holds database connection configuration
type DBConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           string `mapstructure:"port" yaml:"port"`
	Service        string `mapstructure:"service" yaml:"service"`
	Username       string `mapstructure:"username" yaml:"username"`
	Password       string `mapstructure:"password" yaml:"password"`
	WalletLocation string `mapstructure:"wallet_location" yaml:"wallet_location"`
	Table          string `mapstructure:"table" yaml:"table"`
}

// Enabled reports whether the attribute table should come from the database.
func (c DBConfig) Enabled() bool {
	return c.Host != "" && c.Table != ""
}

// dsn builds a properly encoded connection string for Oracle
func dsn(c DBConfig) string {
	if c.WalletLocation != "" {
		// wallet-based mTLS
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			url.PathEscape(c.Username), url.PathEscape(c.Password), c.Host, c.Port, c.Service, url.PathEscape(c.WalletLocation))
	}

	return (&url.URL{
		Scheme: "oracle",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Service,
	}).String()
}

var tableName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*(\.[A-Za-z][A-Za-z0-9_$#]*)?$`)

// Database holds the connection and configuration
type Database struct {
	db     *sql.DB
	config DBConfig
}

// NewDatabase opens and pings a connection.
func NewDatabase(ctx context.Context, config DBConfig) (*Database, error) {
	if !tableName.MatchString(config.Table) {
		return nil, eris.Errorf("database: invalid table name %q", config.Table)
	}

	zap.L().Info("connecting to Oracle",
		zap.String("component", "database"),
		zap.String("host", config.Host),
		zap.String("service", config.Service),
	)

	db, err := sql.Open("oracle", dsn(config))
	if err != nil {
		return nil, eris.Wrap(err, "database: open connection")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "database: ping")
	}

	return &Database{db: db, config: config}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Frame reads the configured table into a string-typed DataFrame with the
// column names as they appear in the database.
func (d *Database) Frame(ctx context.Context) (dataframe.DataFrame, error) {
	records, err := d.records(ctx)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df := dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	if df.Err != nil {
		return df, eris.Wrap(df.Err, "database: build frame")
	}
	return df, nil
}

func (d *Database) String() string {
	return fmt.Sprintf("oracle://%s:%s/%s/%s", d.config.Host, d.config.Port, d.config.Service, d.config.Table)
}

func (d *Database) records(ctx context.Context) ([][]string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+d.config.Table)
	if err != nil {
		return nil, eris.Wrapf(err, "database: query %s", d.config.Table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "database: columns")
	}
	records := [][]string{cols}

	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "database: scan row")
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				rec[i] = strings.TrimSpace(v.String)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "database: iterate rows")
	}
	return records, nil
}
