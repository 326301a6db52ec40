// Package config builds the immutable service configuration once at startup.
// Values come from an optional YAML file (CONFIG_FILE) overlaid by the
// environment; the environment always wins.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment is the OTAP stage the service runs in.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvAcceptance  Environment = "acceptance"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
)

// Config is the complete service configuration.
type Config struct {
	Env       Environment `yaml:"env"`
	GitSHA    string      `yaml:"git_sha"`
	BuildID   string      `yaml:"build_id"`
	HTTPAddr  string      `yaml:"http_addr"`
	LogLevel  string      `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`

	Decos     DecosConfig     `yaml:"decos"`
	Token     TokenConfig     `yaml:"resource_token"`
	OIDC      OIDCConfig      `yaml:"oidc"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Audit     AuditConfig     `yaml:"audit"`
}

// DecosConfig addresses the Decos JOIN API.
type DecosConfig struct {
	Host     string        `yaml:"host"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	BSNBooks []string      `yaml:"bsn_books"`
	KVKBooks []string      `yaml:"kvk_books"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
	Fanout   int           `yaml:"fanout"`
}

// TokenConfig configures the resource token codec.
type TokenConfig struct {
	Key string        `yaml:"key"`
	TTL time.Duration `yaml:"ttl"`
}

// OIDCConfig configures ID token verification.
type OIDCConfig struct {
	JWKSURL             string `yaml:"jwks_url"`
	ClientIDDigiD       string `yaml:"client_id_digid"`
	ClientIDEHerkenning string `yaml:"client_id_eherkenning"`
	ClientIDYivi        string `yaml:"client_id_yivi"`
	VerifySignature     *bool  `yaml:"verify_signature"`
}

// RedisConfig configures the shared rate limit store. An empty URL disables it.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type RateLimitConfig struct {
	PerMinute int  `yaml:"per_minute"`
	Disabled  bool `yaml:"disabled"`
}

// AuditConfig configures the document access trail. Without brokers events
// go to the log.
type AuditConfig struct {
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	BufferSize int      `yaml:"buffer_size"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Env:       EnvDevelopment,
		HTTPAddr:  ":5000",
		LogLevel:  "info",
		Decos: DecosConfig{
			Timeout:  5 * time.Second,
			PageSize: 60,
			Fanout:   12,
		},
		Token: TokenConfig{TTL: time.Hour},
		OIDC: OIDCConfig{
			ClientIDDigiD:       "digid",
			ClientIDEHerkenning: "eherkenning",
			ClientIDYivi:        "yivi",
		},
		Redis: RedisConfig{
			PoolSize:     10,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{PerMinute: 120},
		Audit: AuditConfig{
			Topic:      "decos.document-access",
			BufferSize: 256,
		},
	}
}

// FromEnv builds the configuration from CONFIG_FILE and the environment.
func FromEnv() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse CONFIG_FILE YAML: %w", err)
		}
	}

	var errs []error
	env := envReader{errs: &errs}

	cfg.Env = Environment(env.str("MA_OTAP_ENV", string(cfg.Env)))
	cfg.GitSHA = env.str("MA_GIT_SHA", cfg.GitSHA)
	cfg.BuildID = env.str("MA_BUILD_ID", cfg.BuildID)
	cfg.HTTPAddr = env.str("HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogLevel = env.str("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = env.str("LOG_FORMAT", cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.Env == EnvProduction || cfg.Env == EnvAcceptance {
			cfg.LogFormat = "json"
		}
	}

	cfg.Decos.Host = env.str("DECOS_JOIN_API_HOST", cfg.Decos.Host)
	cfg.Decos.Username = env.str("DECOS_JOIN_USERNAME", cfg.Decos.Username)
	cfg.Decos.Password = env.str("DECOS_JOIN_PASSWORD", cfg.Decos.Password)
	cfg.Decos.BSNBooks = env.list("DECOS_JOIN_ADRES_BOEKEN_BSN", cfg.Decos.BSNBooks)
	cfg.Decos.KVKBooks = env.list("DECOS_JOIN_ADRES_BOEKEN_KVK", cfg.Decos.KVKBooks)
	cfg.Decos.Timeout = env.duration("DECOS_API_REQUEST_TIMEOUT", cfg.Decos.Timeout)
	cfg.Decos.PageSize = env.int("DECOS_PAGE_SIZE", cfg.Decos.PageSize)
	cfg.Decos.Fanout = env.int("DECOS_FANOUT", cfg.Decos.Fanout)

	cfg.Token.Key = env.str("FERNET_ENCRYPTION_KEY", cfg.Token.Key)
	cfg.Token.Key = env.str("RESOURCE_TOKEN_KEY", cfg.Token.Key)
	cfg.Token.TTL = env.duration("RESOURCE_TOKEN_TTL", cfg.Token.TTL)

	cfg.OIDC.JWKSURL = env.str("OIDC_JWKS_URL", cfg.OIDC.JWKSURL)
	cfg.OIDC.ClientIDDigiD = env.str("OIDC_CLIENT_ID_DIGID", cfg.OIDC.ClientIDDigiD)
	cfg.OIDC.ClientIDEHerkenning = env.str("OIDC_CLIENT_ID_EHERKENNING", cfg.OIDC.ClientIDEHerkenning)
	cfg.OIDC.ClientIDYivi = env.str("OIDC_CLIENT_ID_YIVI", cfg.OIDC.ClientIDYivi)
	if v, ok := env.bool("VERIFY_JWT_SIGNATURE"); ok {
		cfg.OIDC.VerifySignature = &v
	}

	cfg.Redis.URL = env.str("REDIS_URL", cfg.Redis.URL)
	cfg.RateLimit.PerMinute = env.int("RATE_LIMIT_PER_MINUTE", cfg.RateLimit.PerMinute)
	if v, ok := env.bool("RATE_LIMIT_DISABLED"); ok {
		cfg.RateLimit.Disabled = v
	}

	cfg.Audit.Brokers = env.list("KAFKA_BROKERS", cfg.Audit.Brokers)
	cfg.Audit.Topic = env.str("AUDIT_TOPIC", cfg.Audit.Topic)
	cfg.Audit.BufferSize = env.int("AUDIT_BUFFER_SIZE", cfg.Audit.BufferSize)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	switch c.Env {
	case EnvProduction, EnvAcceptance, EnvDevelopment, EnvTest:
	default:
		return fmt.Errorf("MA_OTAP_ENV: unknown environment %q", c.Env)
	}
	if c.Decos.PageSize <= 0 {
		return errors.New("DECOS_PAGE_SIZE must be positive")
	}
	if c.Decos.Fanout <= 0 {
		return errors.New("DECOS_FANOUT must be positive")
	}
	if c.Token.TTL <= 0 {
		return errors.New("RESOURCE_TOKEN_TTL must be positive")
	}
	if c.IsProduction() && !c.VerifySignature() {
		return errors.New("VERIFY_JWT_SIGNATURE cannot be disabled in production")
	}
	if c.VerifySignature() && c.OIDC.JWKSURL == "" {
		return errors.New("OIDC_JWKS_URL is required when signatures are verified")
	}
	return nil
}

// IsProduction reports whether preview case types must be hidden.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// VerifySignature reports whether ID token signatures are checked. It
// defaults to true on acceptance and production.
func (c Config) VerifySignature() bool {
	if c.OIDC.VerifySignature != nil {
		return *c.OIDC.VerifySignature
	}
	return c.Env == EnvProduction || c.Env == EnvAcceptance
}

type envReader struct {
	errs *[]error
}

func (e envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e envReader) list(key string, def []string) []string {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e envReader) int(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare numbers are seconds.
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return time.Duration(n) * time.Second
}

func (e envReader) bool(key string) (bool, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return false, false
	}
	return b, true
}
