// Package devproxy serves the admin SPA during development and forwards
// API prefixes to the backend.
package devproxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	authclient "github.com/goliatone/go-auth-client"
	"github.com/goliatone/go-auth-client/config"
	"github.com/goliatone/go-auth-client/guard"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configure the proxy engine
type Options struct {
	// Routes maps a path prefix, "/api/", to its upstream
	Routes map[string]config.ProxyTarget
	// StaticDir holds the built SPA. Unknown paths get index.html.
	StaticDir string
	// Transport used to reach upstreams, defaults to http.DefaultTransport
	Transport http.RoundTripper
	// Guard protects SPA pages under GuardPrefix
	Guard       *guard.Guard
	GuardPrefix string
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Logger      authclient.Logger
}

// New builds the gin engine
func New(opts Options) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = authclient.NopLogger()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(opts.Logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(authclient.MetricsHandler(opts.Gatherer)))
	}

	prefixes := make([]string, 0, len(opts.Routes))
	for prefix := range opts.Routes {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		target := opts.Routes[prefix]
		proxy, err := newReverseProxy(target, opts.Transport, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("proxy %s: %w", prefix, err)
		}

		handler := gin.WrapH(proxy)
		route := strings.TrimSuffix(prefix, "/") + "/*path"
		engine.Any(route, handler)
		opts.Logger.Debug("Proxy route", "prefix", prefix, "target", target.Target, "change_origin", target.ChangeOrigin)
	}

	var handlers []gin.HandlerFunc
	if opts.Guard != nil && opts.GuardPrefix != "" {
		handlers = append(handlers, guardPrefix(opts.GuardPrefix, opts.Guard.Gin()))
	}
	handlers = append(handlers, spa(opts.StaticDir))
	engine.NoRoute(handlers...)

	return engine, nil
}

func newReverseProxy(target config.ProxyTarget, transport http.RoundTripper, logger authclient.Logger) (*httputil.ReverseProxy, error) {
	upstream, err := url.Parse(target.Target)
	if err != nil {
		return nil, err
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("target %q must be an absolute URL", target.Target)
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	if transport != nil {
		proxy.Transport = transport
	}

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		if target.ChangeOrigin {
			req.Host = upstream.Host
		}
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("Upstream request failed", "target", target.Target, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}

	return proxy, nil
}

func guardPrefix(prefix string, mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			mw(c)
			return
		}
		c.Next()
	}
}

func spa(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.File(index)
	}
}

func requestLogger(logger authclient.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Serve runs handler on addr until ctx is done
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
