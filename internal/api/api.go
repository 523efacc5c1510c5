// Package api is the public HTTP surface of the site backend.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rookeryhq/rookery/internal/chat"
	"github.com/rookeryhq/rookery/internal/feed"
	"github.com/rookeryhq/rookery/internal/publish"
	"github.com/rookeryhq/rookery/internal/rookery"
	"github.com/rookeryhq/rookery/internal/server"
)

type (
	// Server serves the blog aggregation endpoints, the local post CRUD,
	// publishing, the reader view, and the chat widget.
	Server struct {
		*http.Server

		agg       *feed.Aggregator
		store     rookery.PostStore
		publisher *publish.Publisher
		publog    rookery.PublishLog
		bot       *chat.Bot

		fetchClient *http.Client
		readerCache *lru.Cache[string, ReaderResp]

		adminSecret  string
		secureCookie *securecookie.SecureCookie
		httpsCookies bool // Whether or not HTTPS should be used for cookies
	}

	ServerConfig struct {
		Port           int
		AdminSecret    string
		CookieHashKey  []byte
		CookieBlockKey []byte
		HttpsCookies   bool
		CorsOrigin     string
	}
)

func NewServer(
	config ServerConfig,
	agg *feed.Aggregator,
	store rookery.PostStore,
	publisher *publish.Publisher,
	publog rookery.PublishLog,
	bot *chat.Bot,
) *Server {
	var (
		r        = server.ErrRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, ReaderResp](1024)
	)

	// Without configured keys, sessions don't survive a restart.
	if len(config.CookieHashKey) == 0 {
		config.CookieHashKey = securecookie.GenerateRandomKey(32)
	}
	if len(config.CookieBlockKey) == 0 {
		config.CookieBlockKey = securecookie.GenerateRandomKey(32)
	}

	srvr := Server{
		agg:       agg,
		store:     store,
		publisher: publisher,
		publog:    publog,
		bot:       bot,
		fetchClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		readerCache:  cache,
		adminSecret:  config.AdminSecret,
		secureCookie: securecookie.New(config.CookieHashKey, config.CookieBlockKey),
		httpsCookies: config.HttpsCookies,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsOrigin}),
				handlers.AllowCredentials(),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(server.AccessLogMiddleware) // Log everything

	r.HandleFuncE("/api/chat", srvr.postChat).Methods(http.MethodPost)
	r.HandleFuncE("/api/reader", srvr.getReader).Methods(http.MethodGet)
	r.HandleFuncE("/api/admin/login", srvr.postAdminLogin).Methods(http.MethodPost)
	r.HandleFuncE("/api/admin/logout", srvr.getAdminLogout).Methods(http.MethodGet)
	r.HandleFuncE("/api/blog/local", srvr.getLocalPosts).Methods(http.MethodGet)

	// Mutations require the admin session
	admin := server.ErrRouter{Router: r.NewRoute().Subrouter()}
	admin.Use(requireAdminMiddleware(srvr.secureCookie))
	admin.HandleFuncE("/api/blog/local", srvr.postLocalPost).Methods(http.MethodPost)
	admin.HandleFuncE("/api/blog/local", srvr.putLocalPost).Methods(http.MethodPut)
	admin.HandleFuncE("/api/blog/local", srvr.deleteLocalPost).Methods(http.MethodDelete)
	admin.HandleFuncE("/api/blog/publish", srvr.postPublish).Methods(http.MethodPost)
	admin.HandleFuncE("/api/blog/publish/history", srvr.getPublishHistory).Methods(http.MethodGet)

	// Last so /api/blog/local and /api/blog/publish win first
	r.HandleFuncE("/api/blog/{source}", srvr.getBlogPosts).Methods(http.MethodGet)

	return &srvr
}
