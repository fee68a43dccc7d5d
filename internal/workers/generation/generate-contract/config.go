// internal/workers/generation/generate-contract/config.go
package generatecontract

import "time"

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig() *Config {
	return &Config{
		// The three persona tasks run concurrently, so the job budget only
		// needs to cover one task deadline plus overhead.
		Timeout:       120 * time.Second,
		MaxJobsActive: 4,
	}
}
