// Package madefire is the entry point of the Madefire client SDK. Build one SDK
// value per process from a Config and share it; it is safe for concurrent use.
package madefire

import (
	"net/http"
	"time"

	"github.com/madefire/madefire-go/pkg/api"
	"github.com/madefire/madefire-go/pkg/coupon"
	"github.com/madefire/madefire-go/pkg/httpclient"
)

// DefaultAPIHost is the production API origin.
const DefaultAPIHost = "https://api.madefire.com"

// Config configures an SDK instance. The zero value targets DefaultAPIHost.
type Config struct {
	// Host is the API origin, e.g. "https://api.madefire.com". It is used verbatim.
	Host string
	// Timeout bounds a single request when HTTPClient is nil.
	Timeout time.Duration
	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client
	Logger     api.Logger
	Observer   api.Observer
}

// SDK groups the API services bound to one configuration.
type SDK struct {
	cfg    Config
	Coupon *coupon.Service
}

// New builds an SDK from cfg. cfg is copied; later changes by the caller have no effect.
func New(cfg Config) *SDK {
	cfg = normalizeConfig(cfg)

	var client httpclient.Client
	if cfg.HTTPClient != nil {
		client = httpclient.NewRestyClientFrom(cfg.HTTPClient)
	} else {
		client = httpclient.NewRestyClient(cfg.Timeout)
	}

	transport := api.NewTransport(cfg.Host, client, cfg.Logger, cfg.Observer)
	return &SDK{
		cfg:    cfg,
		Coupon: coupon.NewService(transport),
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.Host == "" {
		cfg.Host = DefaultAPIHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = api.DefaultTimeout
	}
	return cfg
}

// Config returns the effective configuration.
func (s *SDK) Config() Config {
	return s.cfg
}
