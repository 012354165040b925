// Package app arma el contenedor de dependencias: config → storage →
// cache → email → engine → services → handler HTTP. Los binarios solo
// eligen qué parte del contenedor usar.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/learn2grow/internal/cache"
	"github.com/dropDatabas3/learn2grow/internal/config"
	"github.com/dropDatabas3/learn2grow/internal/email"
	adminctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/admin"
	authctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/auth"
	healthctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/health"
	postsctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/posts"
	requestsctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/requests"
	sponsorsctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/sponsors"
	"github.com/dropDatabas3/learn2grow/internal/http/middlewares"
	"github.com/dropDatabas3/learn2grow/internal/http/router"
	authsvc "github.com/dropDatabas3/learn2grow/internal/http/services/auth"
	postssvc "github.com/dropDatabas3/learn2grow/internal/http/services/posts"
	requestssvc "github.com/dropDatabas3/learn2grow/internal/http/services/requests"
	sponsorssvc "github.com/dropDatabas3/learn2grow/internal/http/services/sponsors"
	"github.com/dropDatabas3/learn2grow/internal/metrics"
	"github.com/dropDatabas3/learn2grow/internal/notify"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
	"github.com/dropDatabas3/learn2grow/internal/rate"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
	"github.com/dropDatabas3/learn2grow/internal/security/token"
	"github.com/dropDatabas3/learn2grow/internal/store"

	// Necesario: los adapters se registran vía init().
	_ "github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/learn2grow/internal/store/adapters/pg"
)

// App es el contenedor de dependencias armado desde la config.
type App struct {
	Cfg    *config.Config
	Store  store.AdapterConnection
	Cache  cache.Client
	Engine *notify.Engine
	Issuer *token.Issuer

	Requests *requestssvc.Service
	Auth     *authsvc.Service
	Sponsors *sponsorssvc.Service
	Posts    *postssvc.Service
}

// New construye el contenedor completo. El caller debe llamar Close.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:         adapterName(cfg.Storage.Driver),
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}

	cacheTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cacheTTL,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("app: open cache: %w", err)
	}

	sender, err := email.NewSender(email.SenderConfig{
		Provider: cfg.SMTP.Provider,
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		TLSMode:  cfg.SMTP.TLS,
		SinkDir:  cfg.SMTP.SinkDir,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("app: build email sender: %w", err)
	}

	renderer, err := email.NewRenderer(cfg.Email.SiteName, cfg.Email.SiteURL)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("app: build email renderer: %w", err)
	}

	engine := notify.NewEngine(conn.Requests(), sender, renderer, notify.Config{
		FromAddress:  cfg.SMTP.From,
		AdminAddress: cfg.Email.AdminAddress,
		SendTimeout:  cfg.SendTimeoutDuration(),
		Concurrency:  cfg.Email.Concurrency,
	})

	issuer, err := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTTLDuration())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("app: build token issuer: %w", err)
	}

	policy := password.Policy{
		MinLength:     cfg.Security.PasswordPolicy.MinLength,
		RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
		RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
		RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
		RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
	}

	a := &App{
		Cfg:    cfg,
		Store:  conn,
		Cache:  cacheClient,
		Engine: engine,
		Issuer: issuer,
	}

	a.Requests = requestssvc.New(requestssvc.Deps{
		Repo:         conn.Requests(),
		Engine:       engine,
		Policy:       policy,
		FollowUpDays: cfg.Email.FollowUpDays,
	})
	a.Auth = authsvc.New(authsvc.Deps{
		Requests: conn.Requests(),
		Sponsors: conn.Sponsors(),
		Issuer:   issuer,
		Admin: authsvc.AdminCredential{
			Email:        cfg.Admin.Email,
			PasswordHash: cfg.Admin.PasswordHash,
		},
	})
	a.Sponsors = sponsorssvc.New(sponsorssvc.Deps{
		Repo:   conn.Sponsors(),
		Policy: policy,
	})
	a.Posts = postssvc.New(postssvc.Deps{
		Repo:  conn.Posts(),
		Cache: cacheClient,
	})

	return a, nil
}

// Handler arma el router HTTP completo sobre el contenedor.
func (a *App) Handler() (http.Handler, error) {
	metricsHandler, err := middlewares.RegisterHTTPMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("app: register http metrics: %w", err)
	}
	if err := metrics.RegisterNotify(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("app: register notify metrics: %w", err)
	}

	var registerLimiter, loginLimiter rate.Limiter
	if a.Cfg.Rate.Enabled {
		registerWindow, _ := time.ParseDuration(a.Cfg.Rate.Register.Window)
		loginWindow, _ := time.ParseDuration(a.Cfg.Rate.Login.Window)
		if rdb, ok := cache.RedisOf(a.Cache); ok {
			// Mismo pool que el cache: ventanas compartidas entre nodos.
			registerLimiter = rate.NewRedisLimiter(rdb, "rl:register:", a.Cfg.Rate.Register.Limit, registerWindow)
			loginLimiter = rate.NewRedisLimiter(rdb, "rl:login:", a.Cfg.Rate.Login.Limit, loginWindow)
		} else {
			registerLimiter = rate.NewMemoryLimiter(a.Cfg.Rate.Register.Limit, registerWindow)
			loginLimiter = rate.NewMemoryLimiter(a.Cfg.Rate.Login.Limit, loginWindow)
		}
	}

	return router.New(router.Deps{
		Health:             healthctl.New(a.Store),
		Auth:               authctl.New(a.Auth),
		Requests:           requestsctl.New(a.Requests),
		Sponsors:           sponsorsctl.New(a.Sponsors),
		Posts:              postsctl.New(a.Posts),
		Admin:              adminctl.New(a.Requests),
		Issuer:             a.Issuer,
		RegisterLimiter:    registerLimiter,
		LoginLimiter:       loginLimiter,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: a.Cfg.Server.CORSAllowedOrigins,
	}), nil
}

// Close libera storage y cache.
func (a *App) Close() error {
	var first error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	logger.L().Debug("app closed")
	return first
}

// adapterName mapea el driver de config al nombre del adapter del registry.
func adapterName(driver string) string {
	if driver == "pg" {
		return "postgres"
	}
	return driver
}
