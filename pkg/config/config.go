// Package config loads runner and CLI configuration from environment
// variables with safe defaults. The engine core takes no configuration;
// everything here wires its collaborators (audit store, evidence archive,
// telemetry, budget limiter).
package config

import "os"

// Config holds runner configuration.
type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string

	// AuditBackend selects the run-record store: "memory", "sqlite" or
	// "postgres".
	AuditBackend string
	// SQLitePath is the audit database file for the sqlite backend.
	SQLitePath string
	// DatabaseURL is the Postgres DSN for the postgres backend.
	DatabaseURL string

	// RedisAddr enables the Redis-backed budget limiter when set.
	RedisAddr string

	// OTLPEndpoint is the gRPC collector endpoint; empty disables telemetry.
	OTLPEndpoint string

	// DataDir is the base directory for file-backed evidence.
	DataDir string
}

// Load reads configuration from the environment.
func Load() *Config {
	logLevel := os.Getenv("CTT_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	backend := os.Getenv("CTT_AUDIT_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	sqlitePath := os.Getenv("CTT_SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "ctt-audit.db"
	}

	dbURL := os.Getenv("CTT_DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://ctt@localhost:5432/ctt?sslmode=disable"
	}

	dataDir := os.Getenv("CTT_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	return &Config{
		LogLevel:     logLevel,
		AuditBackend: backend,
		SQLitePath:   sqlitePath,
		DatabaseURL:  dbURL,
		RedisAddr:    os.Getenv("CTT_REDIS_ADDR"),
		OTLPEndpoint: os.Getenv("CTT_OTLP_ENDPOINT"),
		DataDir:      dataDir,
	}
}
