package authclient

import (
	"net/http"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	EndpointLogin   = "login"
	EndpointLogout  = "logout"
	EndpointRefresh = "refresh"
	EndpointUser    = "user"
)

const (
	DefaultProductionBaseURL  = "https://lt.su:8443"
	DefaultDevelopmentBaseURL = "http://localhost:3000"
	DefaultTokenMaxAge        = 60 * time.Second
	DefaultRefreshTokenMaxAge = 60 * time.Second
)

// DefaultRedirects are the routes of the login/logout flow
var DefaultRedirects = Redirects{
	Login:    "/auth/login",
	Logout:   "/",
	Callback: "/auth/login",
	Home:     "/",
}

// DefaultEndpoints is the backend contract of the local refresh strategy
func DefaultEndpoints() map[string]Endpoint {
	return map[string]Endpoint{
		EndpointLogin:   {URL: "/api/auth/login", Method: http.MethodPost, Property: "token"},
		EndpointLogout:  {URL: "/api/auth/logout", Method: http.MethodPost},
		EndpointRefresh: {URL: "/api/auth/refresh", Method: http.MethodPost},
		EndpointUser:    {URL: "/api/auth/user", Method: http.MethodGet, Property: "user"},
	}
}

var _ Config = &StaticConfig{}

// StaticConfig is a plain Config value. Use NewStaticConfig to start from
// the defaults of the local refresh strategy.
type StaticConfig struct {
	Environment          string
	BaseURL              string
	StrategyName         string
	TokenProperty        string
	TokenType            string
	TokenMaxAge          time.Duration
	TokenGlobal          bool
	RefreshTokenProperty string
	RefreshTokenData     string
	RefreshTokenMaxAge   time.Duration
	RefreshTokenRequired bool
	UserProperty         string
	UserAutoFetch        bool
	Endpoints            map[string]Endpoint
	Redirects            Redirects
}

// NewStaticConfig returns the default strategy pointed at baseURL. An empty
// baseURL picks the default URL for the environment.
func NewStaticConfig(environment, baseURL string) *StaticConfig {
	if environment == "" {
		environment = EnvDevelopment
	}
	if baseURL == "" {
		baseURL = DefaultDevelopmentBaseURL
		if environment == EnvProduction {
			baseURL = DefaultProductionBaseURL
		}
	}
	return &StaticConfig{
		Environment:          environment,
		BaseURL:              baseURL,
		StrategyName:         "local",
		TokenProperty:        "token",
		TokenType:            "Bearer",
		TokenMaxAge:          DefaultTokenMaxAge,
		TokenGlobal:          true,
		RefreshTokenProperty: "refresh_token",
		RefreshTokenData:     "refresh_token",
		RefreshTokenMaxAge:   DefaultRefreshTokenMaxAge,
		RefreshTokenRequired: true,
		UserProperty:         "user",
		UserAutoFetch:        false,
		Endpoints:            DefaultEndpoints(),
		Redirects:            DefaultRedirects,
	}
}

func (c *StaticConfig) GetEnvironment() string               { return c.Environment }
func (c *StaticConfig) GetBaseURL() string                   { return c.BaseURL }
func (c *StaticConfig) GetStrategyName() string              { return c.StrategyName }
func (c *StaticConfig) GetTokenProperty() string             { return c.TokenProperty }
func (c *StaticConfig) GetTokenType() string                 { return c.TokenType }
func (c *StaticConfig) GetTokenMaxAge() time.Duration        { return c.TokenMaxAge }
func (c *StaticConfig) GetTokenGlobal() bool                 { return c.TokenGlobal }
func (c *StaticConfig) GetRefreshTokenProperty() string      { return c.RefreshTokenProperty }
func (c *StaticConfig) GetRefreshTokenData() string          { return c.RefreshTokenData }
func (c *StaticConfig) GetRefreshTokenMaxAge() time.Duration { return c.RefreshTokenMaxAge }
func (c *StaticConfig) GetRefreshTokenRequired() bool        { return c.RefreshTokenRequired }
func (c *StaticConfig) GetUserProperty() string              { return c.UserProperty }
func (c *StaticConfig) GetUserAutoFetch() bool               { return c.UserAutoFetch }
func (c *StaticConfig) GetRedirects() Redirects              { return c.Redirects }

func (c *StaticConfig) GetEndpoint(name string) Endpoint {
	if ep, ok := c.Endpoints[name]; ok {
		return ep
	}
	return DefaultEndpoints()[name]
}
