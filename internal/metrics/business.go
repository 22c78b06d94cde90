package metrics

import "time"

// Import results
const (
	ImportResultSuccess = "success"
	ImportResultFailure = "failure"
)

// RecordImport records the outcome of a CSV import
func (m *Metrics) RecordImport(rows int, duration time.Duration, err error) {
	m.safeExecute("RecordImport", func() {
		if err != nil {
			m.ImportsTotal.WithLabelValues(ImportResultFailure).Inc()
			return
		}
		m.ImportsTotal.WithLabelValues(ImportResultSuccess).Inc()
		m.ImportedRowsTotal.Add(float64(rows))
		m.ImportDuration.Observe(duration.Seconds())
	})
}

// SetMessagesTotal sets the dataset message gauge
func (m *Metrics) SetMessagesTotal(count int64) {
	m.safeExecute("SetMessagesTotal", func() {
		m.MessagesTotal.Set(float64(count))
	})
}

// SetUsersTotal sets the remaining users gauge
func (m *Metrics) SetUsersTotal(count int) {
	m.safeExecute("SetUsersTotal", func() {
		m.UsersTotal.Set(float64(count))
	})
}

// SetDepartedUsersTotal sets the departed users gauge
func (m *Metrics) SetDepartedUsersTotal(count int) {
	m.safeExecute("SetDepartedUsersTotal", func() {
		m.DepartedUsersTotal.Set(float64(count))
	})
}
