// internal/workers/generation/audit-contract/config.go
package auditcontract

import "time"

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig() *Config {
	return &Config{
		// Pure static analysis, no provider calls.
		Timeout:       15 * time.Second,
		MaxJobsActive: 8,
	}
}
