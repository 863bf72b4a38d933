package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the ledger.
type Server struct {
	Addr           string
	MetricsAddr    string
	JWTSigningKey  string
	DBPath         string // sqlite file path; empty selects in-memory stores
	RequestTimeout time.Duration
	AuditBuffer    int // async audit buffer size; 0 = synchronous
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SKILLMINT_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	metricsAddr := os.Getenv("SKILLMINT_METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9090"
	}

	jwtSigningKey := os.Getenv("SKILLMINT_JWT_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	timeout := 30 * time.Second
	if raw := os.Getenv("SKILLMINT_REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}

	auditBuffer := 0
	if os.Getenv("SKILLMINT_AUDIT_ASYNC") == "true" {
		auditBuffer = 256
	}

	return Server{
		Addr:           addr,
		MetricsAddr:    metricsAddr,
		JWTSigningKey:  jwtSigningKey,
		DBPath:         os.Getenv("SKILLMINT_DB"),
		RequestTimeout: timeout,
		AuditBuffer:    auditBuffer,
	}
}
