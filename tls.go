package authclient

import (
	"crypto/tls"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
)

// BaseTransport returns the pooled transport used for backend and API
// calls. Certificate verification is skipped only when the binary was built
// with the dev tag and cfg selects the development environment.
func BaseTransport(cfg Config) *http.Transport {
	env := ""
	if cfg != nil {
		env = cfg.GetEnvironment()
	}
	return baseTransport(env, devBuild)
}

// InsecureTLS reports whether BaseTransport skips certificate verification
// for cfg in this binary.
func InsecureTLS(cfg Config) bool {
	return devBuild && cfg != nil && cfg.GetEnvironment() == EnvDevelopment
}

func baseTransport(env string, allowInsecure bool) *http.Transport {
	transport := cleanhttp.DefaultPooledTransport()
	if allowInsecure && env == EnvDevelopment {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	return transport
}
