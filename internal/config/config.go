// Package config loads numberdesk settings from a YAML file.
//
// Files are checked against an embedded CUE schema before they are decoded,
// so unknown keys and badly typed values are reported with the offending
// path. Keys left out take the values from Default.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/roach88/numberdesk/internal/query"
)

//go:embed schema.cue
var schemaSource string

// Error codes for configuration failures.
const (
	ErrCodeRead     = "CONFIG_READ"
	ErrCodeSyntax   = "CONFIG_SYNTAX"
	ErrCodeSchema   = "CONFIG_SCHEMA"
	ErrCodeInvalid  = "CONFIG_INVALID"
	ErrCodeEndpoint = "CONFIG_NO_ENDPOINT"
)

// Error is a configuration failure.
type Error struct {
	Code    string
	Path    string // file path, empty for in-memory data
	Message string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is or wraps a *Error.
func IsConfigError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// Config holds every numberdesk setting.
type Config struct {
	// Endpoint is the record store URL.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// RefreshInterval is the polling period.
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"`

	// RequestTimeout bounds each call to the record store.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`

	PageSize query.PageSize `yaml:"page_size" json:"page_size"`
	Locale   string         `yaml:"locale" json:"locale"`

	// Cache is the SQLite file used for snapshots and the change journal.
	// Empty disables caching.
	Cache string `yaml:"cache" json:"cache,omitempty"`

	Listen string `yaml:"listen" json:"listen"`

	// RatePerMinute and Burst throttle outbound record store calls and
	// manual refreshes per client. Zero disables throttling.
	RatePerMinute int `yaml:"rate_per_minute" json:"rate_per_minute"`
	Burst         int `yaml:"burst" json:"burst"`
}

// Default returns the settings used for keys a file leaves out.
func Default() Config {
	return Config{
		RefreshInterval: 15 * time.Second,
		RequestTimeout:  20 * time.Second,
		PageSize:        query.DefaultPageSize,
		Locale:          "en",
		Listen:          "127.0.0.1:8080",
		RatePerMinute:   60,
		Burst:           5,
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeRead, Path: path, Message: err.Error()}
	}
	cfg, err := Parse(data)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML data on top of Default after checking it against the
// schema. It does not require an endpoint; call Validate once overrides
// are applied.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, &Error{Code: ErrCodeSyntax, Message: err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := checkSchema(raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Message: err.Error()}
	}
	return cfg, nil
}

// Resolve builds the effective configuration: the file at path (or
// Default when path is empty) with a non-empty endpoint override applied,
// then validated.
func Resolve(path, endpoint string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that the schema cannot: a usable endpoint
// and a known locale.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return &Error{Code: ErrCodeEndpoint, Message: "endpoint is required (set it in the config file or pass --endpoint)"}
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("endpoint %q must be an http or https URL", c.Endpoint)}
	}
	if _, err := c.Language(); err != nil {
		return &Error{Code: ErrCodeInvalid, Message: err.Error()}
	}
	if c.RefreshInterval <= 0 {
		return &Error{Code: ErrCodeInvalid, Message: "refresh_interval must be positive"}
	}
	if c.RequestTimeout <= 0 {
		return &Error{Code: ErrCodeInvalid, Message: "request_timeout must be positive"}
	}
	return nil
}

// Language parses Locale as a BCP 47 tag.
func (c Config) Language() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// checkSchema unifies raw with #Config and requires a concrete result.
func checkSchema(raw map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return &Error{Code: ErrCodeSchema, Message: strings.TrimSpace(cueerrors.Details(err, nil))}
	}
	return nil
}
