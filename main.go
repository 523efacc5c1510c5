// Rookery is the backend for the academy's marketing site.
//
// It aggregates the academy's blog posts from the publishing platforms we
// cross-post to, serves the locally-authored posts, fans out new articles to
// those platforms, and answers the FAQ chat widget.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/run"
	"github.com/sethvargo/go-envconfig"
	_ "golang.org/x/crypto/x509roots/fallback"
	_ "modernc.org/sqlite"

	"github.com/rookeryhq/rookery/internal/api"
	"github.com/rookeryhq/rookery/internal/chat"
	"github.com/rookeryhq/rookery/internal/feed"
	"github.com/rookeryhq/rookery/internal/localstore"
	"github.com/rookeryhq/rookery/internal/publish"
	rooqlite "github.com/rookeryhq/rookery/internal/sqlite"
	"github.com/rookeryhq/rookery/logger"
	"github.com/rookeryhq/rookery/migrations"
)

type config struct {
	Port     int    `env:"PORT, default=8080"`
	Database string `env:"DATABASE, required"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	PostsFile string `env:"POSTS_FILE, default=data/posts.json"`

	AdminSecret    string `env:"ADMIN_SECRET"`
	CookieHashKey  string `env:"COOKIE_HASH_KEY"`
	CookieBlockKey string `env:"COOKIE_BLOCK_KEY"`
	HTTPSCookies   bool   `env:"HTTPS_COOKIES, default=false"`
	CorsOrigin     string `env:"CORS_ORIGIN, default=*"`

	// Optional: enables the Claude fallback for chat replies.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// Per-platform credentials for cross-posting. Any of these may be
	// empty; publishing to that platform then reports a per-platform error.
	DevtoAPIKey   string `env:"DEVTO_API_KEY"`
	MediumToken   string `env:"MEDIUM_TOKEN"`
	HashnodeToken string `env:"HASHNODE_TOKEN"`

	// Feed URL overrides, mostly for ops and local testing.
	SubstackFeedURL string `env:"SUBSTACK_FEED_URL"`
	MediumFeedURL   string `env:"MEDIUM_FEED_URL"`
	DevtoFeedURL    string `env:"DEVTO_FEED_URL"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := runApp(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func runApp(ctx context.Context, cfg config) error {
	slog.Info("running", "port", cfg.Port, "posts_file", cfg.PostsFile)

	// Connect to the db holding publish history
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	sources := feed.DefaultSources()
	if cfg.SubstackFeedURL != "" {
		sources[feed.SourceSubstack] = sources[feed.SourceSubstack].WithURL(cfg.SubstackFeedURL)
	}
	if cfg.MediumFeedURL != "" {
		sources[feed.SourceMedium] = sources[feed.SourceMedium].WithURL(cfg.MediumFeedURL)
	}
	if cfg.DevtoFeedURL != "" {
		sources[feed.SourceDevto] = sources[feed.SourceDevto].WithURL(cfg.DevtoFeedURL)
	}

	agg := feed.NewAggregator(sources, nil)
	store := localstore.New(cfg.PostsFile)
	publog := rooqlite.New(dbx)
	publisher := publish.New(publish.Config{
		DevtoAPIKey:   cfg.DevtoAPIKey,
		MediumToken:   cfg.MediumToken,
		HashnodeToken: cfg.HashnodeToken,
	}, nil, publog)
	bot := chat.New(cfg.AnthropicAPIKey)

	srvr := api.NewServer(api.ServerConfig{
		Port:           cfg.Port,
		AdminSecret:    cfg.AdminSecret,
		CookieHashKey:  []byte(cfg.CookieHashKey),
		CookieBlockKey: []byte(cfg.CookieBlockKey),
		HttpsCookies:   cfg.HTTPSCookies,
		CorsOrigin:     cfg.CorsOrigin,
	}, agg, store, publisher, publog, bot)

	var g run.Group
	g.Add(func() error {
		if err := srvr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}
		return nil
	}, func(error) {
		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srvr.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}
	})
	g.Add(run.ContextHandler(ctx))

	err = g.Run()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}
