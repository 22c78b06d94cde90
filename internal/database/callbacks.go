package database

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

const queryStartKey = "metrics:query_start_time"

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats sql.DBStats)
}

// RegisterMetricsCallbacks registers GORM callbacks for metrics collection.
// Aggregate queries issued through Scan go through the row callback.
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	cb := db.Callback()

	return errors.Join(
		cb.Query().Before("gorm:query").Register("metrics:select_before", startTimer),
		cb.Query().After("gorm:query").Register("metrics:select_after", stopTimer(recorder, "select")),

		cb.Create().Before("gorm:create").Register("metrics:insert_before", startTimer),
		cb.Create().After("gorm:create").Register("metrics:insert_after", stopTimer(recorder, "insert")),

		cb.Update().Before("gorm:update").Register("metrics:update_before", startTimer),
		cb.Update().After("gorm:update").Register("metrics:update_after", stopTimer(recorder, "update")),

		cb.Delete().Before("gorm:delete").Register("metrics:delete_before", startTimer),
		cb.Delete().After("gorm:delete").Register("metrics:delete_after", stopTimer(recorder, "delete")),

		cb.Row().Before("gorm:row").Register("metrics:row_before", startTimer),
		cb.Row().After("gorm:row").Register("metrics:row_after", stopTimer(recorder, "row")),

		cb.Raw().Before("gorm:raw").Register("metrics:raw_before", startTimer),
		cb.Raw().After("gorm:raw").Register("metrics:raw_after", stopTimer(recorder, "raw")),
	)
}

func startTimer(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func stopTimer(recorder MetricsRecorder, operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		startTime, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		recorder.RecordDBQuery(operation, table, time.Since(startTime.(time.Time)), db.Error)
	}
}

// StartDBStatsCollector starts periodic DB stats collection. Close the
// returned channel to stop it.
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder, interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-done:
				return
			}
		}
	}()

	return done
}
