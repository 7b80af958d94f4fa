// Package config loads the auth client settings from YAML with an optional
// environment overlay and environment variable overrides.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	authclient "github.com/goliatone/go-auth-client"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvEnvironment = "AUTHCLIENT_ENV"
	EnvBaseURL     = "AUTHCLIENT_BASE_URL"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config holds every setting of the auth client. It implements
// authclient.Config.
type Config struct {
	Environment string                 `yaml:"environment"`
	BaseURL     BaseURLConfig          `yaml:"base_url"`
	Proxy       map[string]ProxyTarget `yaml:"proxy"`
	Auth        AuthConfig             `yaml:"auth"`
	Log         LogConfig              `yaml:"log"`
	Metrics     MetricsConfig          `yaml:"metrics"`
}

// BaseURLConfig is the API base URL per environment
type BaseURLConfig struct {
	Production  string `yaml:"production"`
	Development string `yaml:"development"`
}

// ProxyTarget forwards a path prefix to an upstream
type ProxyTarget struct {
	Target       string `yaml:"target"`
	ChangeOrigin bool   `yaml:"change_origin"`
}

type AuthConfig struct {
	Strategy     StrategyConfig            `yaml:"strategy"`
	Token        TokenConfig               `yaml:"token"`
	RefreshToken RefreshTokenConfig        `yaml:"refresh_token"`
	User         UserConfig                `yaml:"user"`
	Endpoints    map[string]EndpointConfig `yaml:"endpoints"`
	Redirect     RedirectConfig            `yaml:"redirect"`
	Persistence  PersistenceConfig         `yaml:"persistence"`
}

type StrategyConfig struct {
	Name   string `yaml:"name"`
	Scheme string `yaml:"scheme"`
}

// TokenConfig max age is in seconds, 0 disables local expiry
type TokenConfig struct {
	Property string `yaml:"property"`
	MaxAge   int    `yaml:"max_age"`
	Type     string `yaml:"type"`
	Global   bool   `yaml:"global"`
}

type RefreshTokenConfig struct {
	Property string `yaml:"property"`
	Data     string `yaml:"data"`
	MaxAge   int    `yaml:"max_age"`
	Required bool   `yaml:"required"`
}

type UserConfig struct {
	Property  string `yaml:"property"`
	AutoFetch bool   `yaml:"auto_fetch"`
}

type EndpointConfig struct {
	URL      string `yaml:"url"`
	Method   string `yaml:"method"`
	Property string `yaml:"property"`
}

type RedirectConfig struct {
	Login    string `yaml:"login"`
	Logout   string `yaml:"logout"`
	Callback string `yaml:"callback"`
	Home     string `yaml:"home"`
}

// PersistenceConfig selects where the CLI keeps the session between runs
type PersistenceConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Key    string `yaml:"key"`
	Prefix string `yaml:"prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns the local refresh strategy with the development proxy
func Defaults() *Config {
	endpoints := map[string]EndpointConfig{}
	for name, ep := range authclient.DefaultEndpoints() {
		endpoints[name] = EndpointConfig{URL: ep.URL, Method: ep.Method, Property: ep.Property}
	}

	return &Config{
		Environment: authclient.EnvDevelopment,
		BaseURL: BaseURLConfig{
			Production:  authclient.DefaultProductionBaseURL,
			Development: authclient.DefaultDevelopmentBaseURL,
		},
		Proxy: map[string]ProxyTarget{
			"/api/": {Target: "http://localhost:8443", ChangeOrigin: true},
		},
		Auth: AuthConfig{
			Strategy: StrategyConfig{Name: "local", Scheme: "refresh"},
			Token: TokenConfig{
				Property: "token",
				MaxAge:   60,
				Type:     "Bearer",
				Global:   true,
			},
			RefreshToken: RefreshTokenConfig{
				Property: "refresh_token",
				Data:     "refresh_token",
				MaxAge:   60,
				Required: true,
			},
			User: UserConfig{
				Property:  "user",
				AutoFetch: false,
			},
			Endpoints: endpoints,
			Redirect: RedirectConfig{
				Login:    authclient.DefaultRedirects.Login,
				Logout:   authclient.DefaultRedirects.Logout,
				Callback: authclient.DefaultRedirects.Callback,
				Home:     authclient.DefaultRedirects.Home,
			},
			Persistence: PersistenceConfig{Driver: DriverMemory},
		},
		Log: LogConfig{Level: "info", Format: "console"},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Load reads the base YAML configuration over the defaults and merges the
// optional environment overlay. An empty basePath keeps the defaults.
// Environment variables win over both files.
func Load(basePath string, envPath ...string) (*Config, error) {
	cfg := Defaults()

	if basePath != "" {
		if err := mergeFile(cfg, basePath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if len(envPath) > 0 && envPath[0] != "" {
		if err := mergeFile(cfg, envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to merge env config: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if env := getenv(EnvEnvironment); env != "" {
		c.Environment = env
	}

	if baseURL := getenv(EnvBaseURL); baseURL != "" {
		if c.Environment == authclient.EnvProduction {
			c.BaseURL.Production = baseURL
		} else {
			c.BaseURL.Development = baseURL
		}
	}
}

func (c *Config) normalize() {
	for name, ep := range c.Auth.Endpoints {
		ep.Method = strings.ToUpper(ep.Method)
		c.Auth.Endpoints[name] = ep
	}
}

// Validate checks the configuration before it is used
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.Required, validation.In(authclient.EnvDevelopment, authclient.EnvProduction)),
		validation.Field(&c.BaseURL),
		validation.Field(&c.Proxy, validation.By(validateProxy)),
		validation.Field(&c.Auth),
		validation.Field(&c.Log),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
			WithCode(http.StatusBadRequest).
			WithTextCode("INVALID_CONFIG")
	}
	return nil
}

func (b BaseURLConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Production, validation.Required, is.URL),
		validation.Field(&b.Development, validation.Required, is.URL),
	)
}

func (a AuthConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Strategy),
		validation.Field(&a.Token),
		validation.Field(&a.RefreshToken),
		validation.Field(&a.Endpoints, validation.Required, validation.By(validateEndpoints)),
		validation.Field(&a.Redirect),
		validation.Field(&a.Persistence),
	)
}

func (s StrategyConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Scheme, validation.Required, validation.In("refresh", "local")),
	)
}

func (t TokenConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Property, validation.Required),
		validation.Field(&t.MaxAge, validation.Min(0)),
	)
}

func (r RefreshTokenConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Property, validation.Required),
		validation.Field(&r.Data, validation.Required),
		validation.Field(&r.MaxAge, validation.Min(0)),
	)
}

func (e EndpointConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.URL, validation.Required),
		validation.Field(&e.Method, validation.Required, validation.In(
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		)),
	)
}

func (r RedirectConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Home, validation.Required),
	)
}

func (p PersistenceConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Driver, validation.Required, validation.In(DriverMemory, DriverRedis, DriverSQLite)),
		validation.Field(&p.DSN, validation.By(func(value interface{}) error {
			if p.Driver != DriverMemory && p.DSN == "" {
				return fmt.Errorf("dsn is required for the %s driver", p.Driver)
			}
			return nil
		})),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("json", "console")),
	)
}

func validateEndpoints(value interface{}) error {
	endpoints, _ := value.(map[string]EndpointConfig)

	errs := validation.Errors{}
	for _, name := range []string{authclient.EndpointLogin, authclient.EndpointLogout, authclient.EndpointRefresh, authclient.EndpointUser} {
		ep, ok := endpoints[name]
		if !ok {
			errs[name] = fmt.Errorf("endpoint is required")
			continue
		}
		errs[name] = ep.Validate()
	}
	return errs.Filter()
}

func validateProxy(value interface{}) error {
	proxy, _ := value.(map[string]ProxyTarget)

	errs := validation.Errors{}
	for prefix, target := range proxy {
		if !strings.HasPrefix(prefix, "/") {
			errs[prefix] = fmt.Errorf("prefix must start with /")
			continue
		}
		errs[prefix] = validation.Validate(target.Target, validation.Required, is.URL)
	}
	return errs.Filter()
}

var _ authclient.Config = &Config{}

func (c *Config) GetEnvironment() string { return c.Environment }

// GetBaseURL picks the base URL of the configured environment
func (c *Config) GetBaseURL() string {
	if c.Environment == authclient.EnvProduction {
		return c.BaseURL.Production
	}
	return c.BaseURL.Development
}

func (c *Config) GetStrategyName() string              { return c.Auth.Strategy.Name }
func (c *Config) GetTokenProperty() string             { return c.Auth.Token.Property }
func (c *Config) GetTokenType() string                 { return c.Auth.Token.Type }
func (c *Config) GetTokenMaxAge() time.Duration        { return seconds(c.Auth.Token.MaxAge) }
func (c *Config) GetTokenGlobal() bool                 { return c.Auth.Token.Global }
func (c *Config) GetRefreshTokenProperty() string      { return c.Auth.RefreshToken.Property }
func (c *Config) GetRefreshTokenData() string          { return c.Auth.RefreshToken.Data }
func (c *Config) GetRefreshTokenMaxAge() time.Duration { return seconds(c.Auth.RefreshToken.MaxAge) }
func (c *Config) GetRefreshTokenRequired() bool        { return c.Auth.RefreshToken.Required }
func (c *Config) GetUserProperty() string              { return c.Auth.User.Property }
func (c *Config) GetUserAutoFetch() bool               { return c.Auth.User.AutoFetch }

func (c *Config) GetEndpoint(name string) authclient.Endpoint {
	ep, ok := c.Auth.Endpoints[name]
	if !ok {
		return authclient.DefaultEndpoints()[name]
	}
	return authclient.Endpoint{URL: ep.URL, Method: ep.Method, Property: ep.Property}
}

func (c *Config) GetRedirects() authclient.Redirects {
	return authclient.Redirects{
		Login:    c.Auth.Redirect.Login,
		Logout:   c.Auth.Redirect.Logout,
		Callback: c.Auth.Redirect.Callback,
		Home:     c.Auth.Redirect.Home,
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
