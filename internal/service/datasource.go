package service

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"datachat-backend/internal/state"
)

// DataSourceConfig holds connection details
type DataSourceConfig struct {
	Type     string `json:"type"` // "postgres"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"` // "disable", "require"
}

// DataSource loads tabular data from an external database so it can be
// chatted with like an uploaded CSV.
type DataSource interface {
	Connect(config DataSourceConfig) error
	Close() error
	ListTables() ([]string, error)
	LoadTable(tableName string, limit int) (*state.DataFrame, error)
}

// PostgresDataSource implements DataSource for PostgreSQL
type PostgresDataSource struct {
	db *sql.DB
}

func (p *PostgresDataSource) Connect(config DataSourceConfig) error {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, sslMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	p.db = db
	return nil
}

func (p *PostgresDataSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresDataSource) ListTables() ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// LoadTable reads up to limit rows of a table into an in-memory frame with
// every value rendered as a string, matching what the CSV parser produces.
// tableName is validated against the catalog before being interpolated.
func (p *PostgresDataSource) LoadTable(tableName string, limit int) (*state.DataFrame, error) {
	known, err := p.ListTables()
	if err != nil {
		return nil, err
	}
	valid := false
	for _, t := range known {
		if t == tableName {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown table: %s", tableName)
	}

	if limit <= 0 {
		limit = 10000
	}
	query := fmt.Sprintf(`SELECT * FROM "%s" LIMIT %d`, tableName, limit)

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	df := &state.DataFrame{
		Headers:  columns,
		FileName: tableName,
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make([]string, len(columns))
		for i, val := range values {
			switch v := val.(type) {
			case nil:
				record[i] = ""
			case []byte:
				record[i] = string(v)
			default:
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		df.Rows = append(df.Rows, record)
	}

	return df, rows.Err()
}
