package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/madefire/madefire-go/internal/config"
	"github.com/madefire/madefire-go/internal/logger"
	"github.com/madefire/madefire-go/pkg/api"
	"github.com/madefire/madefire-go/pkg/coupon"
	"github.com/madefire/madefire-go/pkg/madefire"
	"github.com/madefire/madefire-go/pkg/metrics"
	"github.com/madefire/madefire-go/pkg/publishers"
)

// Runner wires the SDK, request metrics and redemption publishers together
// for a single CLI invocation.
type Runner struct {
	cfg      *config.Config
	sdk      *madefire.SDK
	registry *prometheus.Registry
	fanout   *publishers.Fanout
	log      logger.Logger
}

// NewRunner builds a runner from config. Publishers are loaded only when a
// publishers file is configured.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = api.NopLogger{}
	}

	registry := prometheus.NewRegistry()
	requestMetrics, err := metrics.NewRequestMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	sdk := madefire.New(madefire.Config{
		Host:     cfg.APIHost,
		Timeout:  cfg.Timeout,
		Logger:   log,
		Observer: requestMetrics,
	})

	r := &Runner{
		cfg:      cfg,
		sdk:      sdk,
		registry: registry,
		log:      log,
	}

	if cfg.PublishersFile == "" {
		return r, nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	fanout, err := publishers.DefaultRegistry().Connect(ctx, enabledPublishers, log)
	if err != nil {
		return nil, err
	}
	r.fanout = fanout
	log.InfoObj("publishers registry loaded", "publishers", publisherSummary(enabledPublishers))

	return r, nil
}

// Campaign fetches a campaign and writes it to w as indented JSON.
func (r *Runner) Campaign(ctx context.Context, slug string, w io.Writer) error {
	if r == nil || r.sdk == nil {
		return fmt.Errorf("runner is not initialized")
	}

	c, err := r.sdk.Coupon.GetCampaign(ctx, slug)
	if err != nil {
		return err
	}
	r.log.DebugObj("campaign fetched", "campaign", map[string]any{
		"slug":   c.Slug,
		"active": c.Active,
	})
	return writeJSON(w, c)
}

// Redeem posts a redemption, writes the server result to w and announces the
// redemption to the configured publishers. Publisher failures are logged and
// never turn a successful redemption into a failure.
func (r *Runner) Redeem(ctx context.Context, slug string, req coupon.RedemptionRequest, w io.Writer) error {
	if r == nil || r.sdk == nil {
		return fmt.Errorf("runner is not initialized")
	}

	res, err := r.sdk.Coupon.PostRedemption(ctx, slug, req)
	if err != nil {
		return err
	}

	if r.fanout.Size() > 0 {
		evt := publishers.NewRedemptionEvent(slug, req, res)
		delivered, pubErr := r.fanout.Publish(ctx, evt)
		meta := map[string]any{
			"event_id":   evt.ID,
			"delivered":  delivered,
			"publishers": r.fanout.Size(),
		}
		if pubErr != nil {
			meta["error"] = pubErr.Error()
			r.log.ErrorObj("redemption event publish failed", "publish_meta", meta)
		} else {
			r.log.InfoObj("redemption event published", "publish_meta", meta)
		}
	}

	return writeJSON(w, res)
}

// Close flushes metrics to the configured text file and releases publishers.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(r.cfg.MetricsFile, r.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	return errors.Join(errs...)
}

// Gatherer exposes the request metrics collected so far.
func (r *Runner) Gatherer() prometheus.Gatherer {
	return r.registry
}

// publisherSummary keeps only id and type; entries may carry credentials in
// their headers.
func publisherSummary(cfgs []publishers.PublisherConfig) []map[string]string {
	out := make([]map[string]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, map[string]string{"id": cfg.ID, "type": cfg.Type})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
