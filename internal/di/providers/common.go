package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// serviceName tags every JSON log record.
	serviceName = "reychango-server"
)
