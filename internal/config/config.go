package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// JWT signing secret for the local auth service.
	AuthSecret string

	// Question generation provider: openai|ollama.
	GenProvider string
	GenBaseURL  string
	GenAPIKey   string
	GenModel    string

	// Outbound mail. Empty host disables sending.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	provider := envOr("GEN_PROVIDER", "ollama")
	defBase := "http://localhost:11434"
	defModel := "llama3"
	if provider == "openai" {
		defBase = "" // library default
		defModel = "gpt-4o-mini"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),
		DBDriver:  envOr("DB_DRIVER", "sqlite"),
		DBDSN:     envOr("DB_DSN", ""),

		AuthSecret: envOr("AUTH_SECRET", "dev-secret-change-me"),

		GenProvider: provider,
		GenBaseURL:  envOr("GEN_BASE_URL", defBase),
		GenAPIKey:   os.Getenv("GEN_API_KEY"),
		GenModel:    envOr("GEN_MODEL", defModel),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envOr("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: envOr("SMTP_FROM", "no-reply@skillforge.local"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}
func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
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
