// Package app wires the session components together and hosts the
// command use-cases.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stocktray/stocktray/internal/alert"
	"github.com/stocktray/stocktray/internal/api"
	"github.com/stocktray/stocktray/internal/cache"
	"github.com/stocktray/stocktray/internal/colors"
	"github.com/stocktray/stocktray/internal/config"
	"github.com/stocktray/stocktray/internal/credential"
	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/logging"
	"github.com/stocktray/stocktray/internal/realtime"
	"github.com/stocktray/stocktray/internal/store"
)

// ErrNotLoggedIn indicates no session token is stored.
var ErrNotLoggedIn = errors.New("not logged in: run 'stocktray login' first")

// ErrNoServer indicates the server URL is not configured.
var ErrNoServer = errors.New("no server configured: set server_url in the config file or STOCKTRAY_SERVER_URL")

// Session owns one authenticated session's components: the REST client,
// the realtime channel, the reconciliation store and the local cache.
// It is constructed at command start and torn down at exit; nothing in
// it is a package-level singleton.
type Session struct {
	Config  config.Config
	Token   string
	Client  *api.Client
	Channel *realtime.Manager
	Store   *store.Store
	Cache   *cache.Cache
	Logger  logging.Logger
}

// NewSession loads configuration, reads the stored credential and
// assembles the session. Returns ErrNotLoggedIn when no token exists
// and ErrNoServer when no server URL is configured.
func NewSession() (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		return nil, ErrNoServer
	}

	logCfg := logging.DefaultConfig()
	logCfg.Enabled = cfg.LoggingEnabled
	logCfg.Level = cfg.LoggingLevel
	logger, err := logging.Init(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	colors.SetLogger(logger)

	token, err := credential.NewStore().Token()
	if err != nil {
		if errors.Is(err, credential.ErrNoToken) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	return newSessionWith(cfg, token, logger)
}

// newSessionWith assembles a session from resolved parts. Split out for
// tests.
func newSessionWith(cfg config.Config, token string, logger logging.Logger) (*Session, error) {
	client := api.NewClient(cfg.ServerURL, token, cfg.RequestTimeout())

	cachePath := cfg.CachePath
	if cachePath == "" {
		var err error
		cachePath, err = cache.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	notificationCache, err := cache.Open(cachePath)
	if err != nil {
		return nil, err
	}

	notifier := alert.NewDesktop(cfg.AlertsEnabled, logger)
	st := store.New(store.Options{
		Client:   client,
		Notifier: notifier,
		Cache:    notificationCache,
		Logger:   logger,
		PageSize: cfg.PageSize,
	})

	channel := realtime.New(realtime.Options{
		URL:              channelURL(cfg),
		HandshakeTimeout: cfg.HandshakeTimeout(),
		Heartbeat:        cfg.Heartbeat(),
		Logger:           logger,
	})
	bindChannel(channel, st, logger)

	return &Session{
		Config:  cfg,
		Token:   token,
		Client:  client,
		Channel: channel,
		Store:   st,
		Cache:   notificationCache,
		Logger:  logger,
	}, nil
}

// channelURL derives the websocket endpoint from the configuration.
func channelURL(cfg config.Config) string {
	if cfg.ChannelURL != "" {
		return cfg.ChannelURL
	}
	url := cfg.ServerURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimRight(url, "/") + "/ws"
}

// bindChannel routes channel events into the store: pushed
// notifications into the merge, health transitions into the phase.
func bindChannel(channel *realtime.Manager, st *store.Store, logger logging.Logger) {
	channel.On(realtime.EventConnectionEstablished, func(data json.RawMessage) {
		st.SetConnected(true)
	})
	channel.On(realtime.EventConnectionClosed, func(data json.RawMessage) {
		st.SetConnected(false)
	})
	channel.On(realtime.EventConnectionFailed, func(data json.RawMessage) {
		st.SetConnected(false)
	})
	channel.On(realtime.EventNewNotification, func(data json.RawMessage) {
		n, err := realtime.DecodeNotification(data)
		if err != nil {
			logger.Warn("dropping malformed pushed notification", "error", err.Error())
			return
		}
		st.IngestPushed(n)
	})
}

// Start begins the session: restores the cached list, kicks off the
// initial snapshot and connects the channel. Snapshot and connect
// failures degrade the session, they do not abort it.
func (s *Session) Start(ctx context.Context) {
	s.Store.Begin()

	if cached, err := s.Cache.Load(); err == nil && len(cached) > 0 {
		s.Store.RestoreFromCache(cached)
	}

	if _, err := s.Store.LoadSnapshot(ctx, 1, domain.FilterAll); err != nil {
		s.Logger.Warn("initial snapshot failed, serving cached state", "error", err.Error())
	}

	s.Channel.Connect(ctx, s.Token)
}

// Close tears the session down: channel, store and cache. Safe to call
// on every exit path.
func (s *Session) Close() {
	s.Channel.Disconnect()
	s.Store.Teardown()
	if s.Cache != nil {
		_ = s.Cache.Close()
	}
	_ = s.Logger.Shutdown()
}
