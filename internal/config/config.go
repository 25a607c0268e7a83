package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cortexprobe/internal/core"

	"github.com/spf13/viper"
)

// AgentConfig holds everything the agent command needs for one run.
type AgentConfig struct {
	AccountURL          string
	PAT                 string
	SemanticModelFile   string
	CortexSearchService string
	HTTPClientSettings  HTTPClientSettings
}

// SearchConfig holds the SQL connection parameters for the search command.
type SearchConfig struct {
	AccountURL    string
	PAT           string
	User          string
	Warehouse     string
	Database      string
	Schema        string
	SearchService string
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// HistoryConfig selects the run history backend. Both empty disables history.
type HistoryConfig struct {
	RedisURL string
	FilePath string
}

// MissingEnvError lists required keys that were absent or empty.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("Missing required environment variables: %s", strings.Join(e.Names, ", "))
}

// Unwrap exposes the error as a MISSING_CONFIG *core.AppError.
func (e *MissingEnvError) Unwrap() error {
	return core.NewAppError(core.ErrCodeMissingConfig, "required configuration missing", nil)
}

// AgentRequiredKeys are the keys the agent command cannot run without, in report order.
var AgentRequiredKeys = []string{
	core.EnvAccountURL,
	core.EnvPAT,
	core.EnvSemanticModelFile,
	core.EnvCortexSearchService,
}

// SearchRequiredKeys are the keys the search command cannot run without, in report order.
var SearchRequiredKeys = []string{
	core.EnvAccountURL,
	core.EnvPAT,
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// NewViper returns a viper instance bound to the process environment with
// the search placeholders as defaults. A non-empty configFile is read on top.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(core.EnvUser, core.DefaultUser)
	v.SetDefault(core.EnvWarehouse, core.DefaultWarehouse)
	v.SetDefault(core.EnvDatabase, core.DefaultDatabase)
	v.SetDefault(core.EnvSchema, core.DefaultSchema)
	v.SetDefault(core.EnvRequestTimeout, core.HTTPRequestTimeout)
	v.SetDefault(core.EnvMockPort, core.DefaultMockPort)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

// MissingKeys returns the keys from required that have no value, preserving order.
func MissingKeys(v *viper.Viper, required []string) []string {
	var missing []string
	for _, key := range required {
		if v.GetString(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// LoadAgentConfig builds the agent configuration. It returns *MissingEnvError
// when any required key is absent, before anything touches the network.
func LoadAgentConfig(v *viper.Viper) (AgentConfig, error) {
	if missing := MissingKeys(v, AgentRequiredKeys); len(missing) > 0 {
		return AgentConfig{}, &MissingEnvError{Names: missing}
	}

	settings := DefaultHTTPClientSettings()
	timeout := v.GetDuration(core.EnvRequestTimeout)
	if timeout <= 0 {
		return AgentConfig{}, fmt.Errorf("invalid %s value %q", core.EnvRequestTimeout, v.GetString(core.EnvRequestTimeout))
	}
	settings.RequestTimeout = timeout

	return AgentConfig{
		AccountURL:          strings.TrimRight(v.GetString(core.EnvAccountURL), "/"),
		PAT:                 v.GetString(core.EnvPAT),
		SemanticModelFile:   v.GetString(core.EnvSemanticModelFile),
		CortexSearchService: v.GetString(core.EnvCortexSearchService),
		HTTPClientSettings:  settings,
	}, nil
}

// LoadSearchConfig builds the search configuration. Connection fields other
// than the account URL and PAT fall back to placeholders. The returned config is
// filled in even when it also returns *MissingEnvError.
func LoadSearchConfig(v *viper.Viper) (SearchConfig, error) {
	service := v.GetString(core.EnvCortexSearchService)
	if service == "" {
		service = core.DefaultSearchService
	}

	cfg := SearchConfig{
		AccountURL:    v.GetString(core.EnvAccountURL),
		PAT:           v.GetString(core.EnvPAT),
		User:          v.GetString(core.EnvUser),
		Warehouse:     v.GetString(core.EnvWarehouse),
		Database:      v.GetString(core.EnvDatabase),
		Schema:        v.GetString(core.EnvSchema),
		SearchService: service,
	}
	if missing := MissingKeys(v, SearchRequiredKeys); len(missing) > 0 {
		return cfg, &MissingEnvError{Names: missing}
	}
	return cfg, nil
}

// LoadHistoryConfig reads the optional run history settings.
func LoadHistoryConfig(v *viper.Viper) HistoryConfig {
	return HistoryConfig{
		RedisURL: v.GetString(core.EnvRedisURL),
		FilePath: v.GetString(core.EnvRunHistoryPath),
	}
}

// AccountIdentifier derives the account identifier and host from an account URL
// such as https://xy12345.us-east-1.snowflakecomputing.com. A bare identifier is
// returned unchanged with an empty host.
func AccountIdentifier(accountURL string) (account, host string, err error) {
	raw := strings.TrimSpace(accountURL)
	if raw == "" {
		return "", "", fmt.Errorf("account URL is empty")
	}

	if !strings.Contains(raw, "://") {
		if strings.Contains(raw, ".") {
			raw = "https://" + raw
		} else {
			return raw, "", nil
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid account URL %q: %w", accountURL, err)
	}
	host = u.Hostname()
	if host == "" {
		return "", "", fmt.Errorf("invalid account URL %q: missing host", accountURL)
	}

	account = strings.TrimSuffix(strings.ToLower(host), core.SnowflakeHostSuffix)
	return account, host, nil
}

// FindDotEnv returns the first .env file found in dir or one of its parents,
// or "" when there is none.
func FindDotEnv(dir string) string {
	for {
		candidate := filepath.Join(dir, core.DotEnvFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
