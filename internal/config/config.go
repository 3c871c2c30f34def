package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// CatalogPath points at the question CSV. Loaded once at startup;
	// replacing it requires a restart.
	CatalogPath string

	AuthSecret string
	// AdminKeyHash is the bcrypt hash of the administrator key. The default
	// matches the key "admin123" for local development.
	AdminKeyHash string

	ScriptTimeout time.Duration

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		CatalogPath:   envOr("CATALOG_PATH", "questions.csv"),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminKeyHash:  envOr("ADMIN_KEY_HASH", "$2a$12$D4G5f18o7aMMfwasBL57puWdUrdNRfoOQb3SGk1VFeV9kZaKb6Tcm"),
		ScriptTimeout: envDuration("SCRIPT_TIMEOUT", 5*time.Second),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
