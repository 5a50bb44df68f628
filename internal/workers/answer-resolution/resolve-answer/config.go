// internal/workers/answer-resolution/resolve-answer/config.go
package resolveanswer

import (
	"time"

	"answer-bot/internal/common/config"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	// Timeout bounds one resolution, including the language service call.
	Timeout time.Duration
}

// LoadConfig reads the per-job deadline from camunda.request_timeout.
func LoadConfig(cfg config.CamundaConfig) *Config {
	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Config{
		Timeout: timeout,
	}
}
