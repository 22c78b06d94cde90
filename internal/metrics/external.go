package metrics

import "time"

// External dependency targets
const (
	TargetS3    = "s3"
	TargetRedis = "redis"
)

// RecordExternalCall records a call to S3 or Redis
func (m *Metrics) RecordExternalCall(target string, duration time.Duration, err error) {
	m.safeExecute("RecordExternalCall", func() {
		result := "success"
		if err != nil {
			result = "error"
		}
		m.ExternalRequestsTotal.WithLabelValues(target, result).Inc()
		m.ExternalRequestDuration.WithLabelValues(target).Observe(duration.Seconds())
	})
}
