package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL       string
	ServerAddr        string
	TicketFormula     string
	VoteRetryAttempts int
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "quadvote")
		pass := getenv("POSTGRES_PASSWORD", "quadvote_pass")
		db := getenv("POSTGRES_DB", "quadvote")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	formula := os.Getenv("TICKET_FORMULA")
	retries := parseInt(getenv("VOTE_RETRY_ATTEMPTS", "5"), 5)

	return &Config{
		DatabaseURL:       dsn,
		ServerAddr:        addr,
		TicketFormula:     formula,
		VoteRetryAttempts: retries,
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
