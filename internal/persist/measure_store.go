package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for measure tracking.
const (
	runsTable       = "livemeasure_runs"
	measuresTable   = "livemeasure_measures"
	migrationsTable = "livemeasure_schema_migrations"
)

// pingAttempts bounds the connection retries for networked backends.
const pingAttempts = 4

// ErrMeasureNotFound is returned when a diff targets a measure that was never stored.
var ErrMeasureNotFound = errors.New("measure not found")

// MeasureStoreImpl implements the MeasureStore interface.
type MeasureStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	sb      sq.StatementBuilderType
}

var _ contract.MeasureStore = &MeasureStoreImpl{} // Compile-time check

// NewMeasureStore creates a new MeasureStore with the specified backend.
// For SQLite an empty connStr selects the default database file.
func NewMeasureStore(backend schema.DatabaseBackend, connStr string) (contract.MeasureStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &MeasureStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create measure tables: %w", err)
	}

	return &MeasureStoreImpl{
		db:      db,
		backend: backend,
		sb:      statementBuilder(backend),
	}, nil
}

// openDB opens and verifies a connection for the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		cfg, parseErr := mysql.ParseDSN(connStr)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid MySQL connection string: %w. Expected user:password@tcp(host:port)/dbname", parseErr)
		}
		// DATETIME columns scan into time.Time only with parseTime
		cfg.ParseTime = true
		db, err = sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := pingWithRetry(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}
	return db, nil
}

// pingWithRetry verifies the connection. Networked backends get a few
// exponentially spaced attempts since containers often accept connections late.
func pingWithRetry(db *sql.DB, backend schema.DatabaseBackend) error {
	ctx := context.Background()
	if backend == schema.SQLiteBackend {
		return db.PingContext(ctx)
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(pingAttempts))
	return err
}

// statementBuilder returns a squirrel builder with the placeholder style of the backend.
func statementBuilder(backend schema.DatabaseBackend) sq.StatementBuilderType {
	if backend == schema.PostgreSQLBackend {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// createTables applies the embedded up migrations of the backend. Every
// statement uses IF NOT EXISTS so reopening an existing store is safe.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	migrations, err := backendMigrations(backend)
	if err != nil {
		return err
	}
	files, err := fs.Glob(migrations, "*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	slices.Sort(files)

	for _, name := range files {
		query, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

// disabled reports whether the store is a no-op.
func (ms *MeasureStoreImpl) disabled() bool {
	return ms.backend == schema.NoneBackend || ms.db == nil
}

// BeginRun creates a new compute run and returns its unique ID.
func (ms *MeasureStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if ms.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	insert := ms.sb.Insert(runsTable).
		Columns("start_time", "config_params").
		Values(formatTime(startTime, ms.backend), string(configJSON))

	var runID int64
	if ms.backend == schema.PostgreSQLBackend {
		err = insert.Suffix("RETURNING run_id").RunWith(ms.db).QueryRow().Scan(&runID)
	} else {
		var result sql.Result
		result, err = insert.RunWith(ms.db).Exec()
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert compute run: %w", err)
	}
	return runID, nil
}

// EndRun updates the compute run with completion data.
func (ms *MeasureStoreImpl) EndRun(runID int64, endTime time.Time, totalComponents int) error {
	if ms.disabled() {
		return nil
	}

	row := ms.sb.Select("start_time").From(runsTable).
		Where(sq.Eq{"run_id": runID}).
		RunWith(ms.db).QueryRow()
	startTime, err := ms.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	_, err = ms.sb.Update(runsTable).
		Set("end_time", formatTime(endTime, ms.backend)).
		Set("run_duration_ms", endTime.Sub(startTime).Milliseconds()).
		Set("total_components", totalComponents).
		Where(sq.Eq{"run_id": runID}).
		RunWith(ms.db).Exec()
	if err != nil {
		return fmt.Errorf("failed to update compute run: %w", err)
	}
	return nil
}

// RecordMeasures stores the computed measures of one component in a single statement.
func (ms *MeasureStoreImpl) RecordMeasures(runID int64, component string, measures []schema.Measure, recordedAt time.Time) error {
	if ms.disabled() || len(measures) == 0 {
		return nil
	}

	insert := ms.sb.Insert(measuresTable).
		Columns("run_id", "component_key", "metric_key", "value_type", "num_value", "text_value", "recorded_at")
	at := formatTime(recordedAt, ms.backend)
	for _, m := range measures {
		rec := schema.NewMeasureRecord(runID, component, m, recordedAt)
		insert = insert.Values(rec.RunID, rec.ComponentKey, rec.MetricKey, string(rec.ValueType), rec.NumValue, rec.TextValue, at)
	}

	if _, err := insert.RunWith(ms.db).Exec(); err != nil {
		return fmt.Errorf("failed to insert measures for %s: %w", component, err)
	}
	return nil
}

// latestRunFor returns the most recent run that stored measures for the component.
func (ms *MeasureStoreImpl) latestRunFor(component string) (int64, bool, error) {
	var runID sql.NullInt64
	err := ms.sb.Select("MAX(run_id)").From(measuresTable).
		Where(sq.Eq{"component_key": component}).
		RunWith(ms.db).QueryRow().Scan(&runID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to find latest run for %s: %w", component, err)
	}
	return runID.Int64, runID.Valid, nil
}

// LatestMeasures returns the measures of a component from its most recent run.
func (ms *MeasureStoreImpl) LatestMeasures(component string) ([]schema.Measure, error) {
	if ms.disabled() {
		return nil, nil
	}

	runID, ok, err := ms.latestRunFor(component)
	if err != nil || !ok {
		return nil, err
	}

	records, err := ms.queryMeasures(sq.Eq{"run_id": runID, "component_key": component})
	if err != nil {
		return nil, err
	}

	out := make([]schema.Measure, 0, len(records))
	for _, rec := range records {
		v, err := rec.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, schema.Measure{Metric: rec.MetricKey, Value: v})
	}
	return out, nil
}

// ApplyDiff adds delta to a numeric measure of a component in its most recent run.
func (ms *MeasureStoreImpl) ApplyDiff(component string, metric string, delta float64) error {
	if ms.disabled() {
		return nil
	}

	runID, ok, err := ms.latestRunFor(component)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: component %s has no stored run", ErrMeasureNotFound, component)
	}

	result, err := ms.sb.Update(measuresTable).
		Set("num_value", sq.Expr("num_value + ?", delta)).
		Where(sq.Eq{
			"run_id":        runID,
			"component_key": component,
			"metric_key":    metric,
			"value_type":    string(schema.FloatType),
		}).
		RunWith(ms.db).Exec()
	if err != nil {
		return fmt.Errorf("failed to apply diff to %s on %s: %w", metric, component, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to apply diff to %s on %s: %w", metric, component, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s on %s in run %d", ErrMeasureNotFound, metric, component, runID)
	}
	return nil
}

// Close closes the underlying connection.
func (ms *MeasureStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

// GetStatus returns status information about the measure store.
func (ms *MeasureStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(ms.backend),
		Connected:  ms.db != nil,
		TableSizes: make(map[string]int64),
	}
	if ms.disabled() {
		return status, nil
	}

	if err := ms.sb.Select("COUNT(*)").From(runsTable).RunWith(ms.db).QueryRow().Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := ms.sb.Select("run_id", "start_time").From(runsTable).
			OrderBy("run_id DESC").Limit(1).
			RunWith(ms.db).QueryRow()
		var lastRunID int64
		lastRunTime, err := ms.scanTime(row, &lastRunID)
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = lastRunID
		status.LastRunTime = lastRunTime

		row = ms.sb.Select("start_time").From(runsTable).
			OrderBy("run_id ASC").Limit(1).
			RunWith(ms.db).QueryRow()
		if status.OldestRunTime, err = ms.scanTime(row); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		if err := ms.sb.Select("COUNT(DISTINCT component_key)").From(measuresTable).
			RunWith(ms.db).QueryRow().Scan(&status.TotalComponents); err != nil {
			return status, fmt.Errorf("failed to get total components: %w", err)
		}
	}

	for _, table := range []string{runsTable, measuresTable} {
		var count int64
		if err := ms.sb.Select("COUNT(*)").From(table).RunWith(ms.db).QueryRow().Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all compute runs from the store.
func (ms *MeasureStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if ms.disabled() {
		return nil, nil
	}

	rows, err := ms.sb.Select("run_id", "start_time", "end_time", "run_duration_ms", "total_components", "config_params").
		From(runsTable).OrderBy("run_id").
		RunWith(ms.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query compute runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		switch ms.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.TotalComponents, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan compute run: %w", err)
			}
			if record.StartTime, err = parseTime(startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalComponents, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan compute run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compute runs: %w", err)
	}
	return results, nil
}

// GetAllMeasures retrieves all stored measures.
func (ms *MeasureStoreImpl) GetAllMeasures() ([]schema.MeasureRecord, error) {
	if ms.disabled() {
		return nil, nil
	}
	return ms.queryMeasures(nil)
}

// queryMeasures reads measure rows matching the predicate, ordered by run, component and metric.
func (ms *MeasureStoreImpl) queryMeasures(where sq.Sqlizer) ([]schema.MeasureRecord, error) {
	query := ms.sb.Select("run_id", "component_key", "metric_key", "value_type", "num_value", "text_value", "recorded_at").
		From(measuresTable).
		OrderBy("run_id", "component_key", "metric_key")
	if where != nil {
		query = query.Where(where)
	}

	rows, err := query.RunWith(ms.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query measures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MeasureRecord
	for rows.Next() {
		var record schema.MeasureRecord
		var valueType string
		switch ms.backend {
		case schema.SQLiteBackend:
			var recordedAtStr string
			if err := rows.Scan(&record.RunID, &record.ComponentKey, &record.MetricKey, &valueType,
				&record.NumValue, &record.TextValue, &recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan measure: %w", err)
			}
			if record.RecordedAt, err = parseTime(recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.ComponentKey, &record.MetricKey, &valueType,
				&record.NumValue, &record.TextValue, &record.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan measure: %w", err)
			}
		}
		record.ValueType = schema.ValueType(valueType)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measures: %w", err)
	}
	return results, nil
}

// scanTime scans a row whose last column is a timestamp. Leading columns go into dest.
func (ms *MeasureStoreImpl) scanTime(row sq.RowScanner, dest ...any) (time.Time, error) {
	if ms.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(append(dest, &s)...); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	}
	var t time.Time
	if err := row.Scan(append(dest, &t)...); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
