package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"rebateforge-site/internal/cache"
	"rebateforge-site/internal/config"
	"rebateforge-site/internal/handlers"
	"rebateforge-site/internal/logging"
	"rebateforge-site/internal/provider"
	"rebateforge-site/internal/service"
	"rebateforge-site/internal/web"
)

const SubscribePath = "/api/subscribe"

type Options struct {
	Config         *config.Config
	Logger         *logging.ContextLogger
	TracerProvider trace.TracerProvider
	// Provider overrides the adapter selected by Config.Provider.Kind.
	Provider provider.ContactCreator
}

type Application struct {
	server   *http.Server
	config   *config.Config
	logger   *logging.ContextLogger
	router   *gin.Engine
	provider provider.ContactCreator
	tracker  cache.SubmissionTracker
	service  *service.SubscriptionService
	closers  []func() error
}

func Build(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	closeProvider := func() error { return nil }
	contacts := opts.Provider
	if contacts == nil {
		var err error
		contacts, closeProvider, err = provider.New(cfg)
		if err != nil {
			return nil, err
		}
	}

	var tracker cache.SubmissionTracker = cache.Disabled{}
	closers := []func() error{closeProvider}
	if cfg.RepeatWindow > 0 {
		c := cache.NewInMemoryCache(cfg.RepeatWindow)
		tracker = c
		closers = append(closers, func() error { c.Close(); return nil })
	}

	subscriptionService := service.NewSubscriptionService(contacts, tracker, cfg.Provider.AudienceID, opts.Logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, opts.Logger)
	pageHandler := handlers.NewPageHandler(SubscribePath, cfg.ServiceName)

	var otelOpts []otelgin.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelgin.WithTracerProvider(opts.TracerProvider))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName, otelOpts...))
	router.Use(requestLogger(opts.Logger))
	router.SetHTMLTemplate(web.Templates())

	router.GET("/", pageHandler.Landing)
	router.GET("/health", pageHandler.Health)
	router.POST(SubscribePath, subscriptionHandler.Subscribe)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		server:   server,
		config:   cfg,
		logger:   opts.Logger,
		router:   router,
		provider: contacts,
		tracker:  tracker,
		service:  subscriptionService,
		closers:  closers,
	}, nil
}

func requestLogger(logger *logging.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.WithTracing(c.Request.Context()).WithFields(map[string]interface{}{
			"method":     method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}).Info("HTTP request completed")
	}
}

func (app *Application) Run() error {
	app.logger.Info("Starting server on :" + app.config.Port)
	if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.logger.Info("Shutting down server...")
	err := app.server.Shutdown(ctx)
	for _, closeFn := range app.closers {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (app *Application) Router() *gin.Engine {
	return app.router
}

func (app *Application) Provider() provider.ContactCreator {
	return app.provider
}

func (app *Application) Tracker() cache.SubmissionTracker {
	return app.tracker
}
