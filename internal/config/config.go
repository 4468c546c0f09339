// Package config defines service configuration and its loading order.
//
// Precedence (low -> high): built-in defaults, optional YAML file named
// by FACULTYHUB_CONFIG, then FACULTYHUB_-prefixed environment variables.
package config

// Config contains process configuration
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is where the sqlite database lives.
	DataDir string `koanf:"data_dir"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// SessionSecret signs session tokens. Must be overridden in production.
	SessionSecret string `koanf:"session_secret"`

	// AllowedEmailDomain restricts which addresses may log in.
	AllowedEmailDomain string `koanf:"allowed_email_domain"`

	// SharedPassword is the demo-mode login password.
	SharedPassword string `koanf:"shared_password"`

	// AdminEmail is granted the admin role on first login.
	AdminEmail string `koanf:"admin_email"`

	// RedisAddr enables distributed rate limiting when non-empty.
	RedisAddr string `koanf:"redis_addr"`

	// RatingSubmitPerMinute caps rating submissions per user.
	RatingSubmitPerMinute int `koanf:"rating_submit_per_minute"`

	// RequestsPerSecond is the per-IP request rate limit.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// RequestTimeoutSeconds bounds HTTP handler execution.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`

	// ResponseCacheTTLSeconds is how long GET responses stay cached.
	ResponseCacheTTLSeconds int `koanf:"response_cache_ttl_seconds"`

	// RankingCacheTTLSeconds is how long computed rankings stay cached.
	RankingCacheTTLSeconds int `koanf:"ranking_cache_ttl_seconds"`

	// OpenAlexBaseURL points at the bibliographic API.
	OpenAlexBaseURL string `koanf:"openalex_base_url"`

	// OpenAlexMailto goes into the polite-pool query parameter.
	OpenAlexMailto string `koanf:"openalex_mailto"`

	// InstitutionID filters author and works lookups to one institution.
	InstitutionID string `koanf:"institution_id"`

	// SyncPerFacultySeconds bounds each faculty's external lookups.
	SyncPerFacultySeconds int `koanf:"sync_per_faculty_seconds"`

	// ChatRetentionDays is how long chat messages are kept.
	ChatRetentionDays int `koanf:"chat_retention_days"`
}

// New returns the built-in defaults
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":8080",
		DataDir:                 "./data",
		CORSOrigins:             []string{"http://localhost:3000"},
		SessionSecret:           "dev-only-secret-change-me",
		AllowedEmailDomain:      "vitapstudent.ac.in",
		SharedPassword:          "password",
		AdminEmail:              "admin@vitapstudent.ac.in",
		RatingSubmitPerMinute:   10,
		RequestsPerSecond:       20,
		RequestTimeoutSeconds:   30,
		ResponseCacheTTLSeconds: 60,
		RankingCacheTTLSeconds:  60,
		OpenAlexBaseURL:         "https://api.openalex.org",
		SyncPerFacultySeconds:   20,
		ChatRetentionDays:       90,
	}
}
