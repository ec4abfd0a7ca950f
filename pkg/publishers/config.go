package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported publisher types.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

const (
	httpDefaultMethod         = http.MethodPost
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one sink declared in the publishers file. Only the block
// matching Type is read.
type PublisherConfig struct {
	ID      string                    `json:"id" yaml:"id"`
	Type    string                    `json:"type" yaml:"type"`
	Enabled *bool                     `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPPublisherConfig      `json:"http" yaml:"http"`
	SQS     *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	PubSub  *GCPPubSubPublisherConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// HTTPPublisherConfig posts each event to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SQSPublisherConfig targets a queue. A URL ending in ".fifo" enables
// per-campaign ordering and deduplication by event ID.
type SQSPublisherConfig struct {
	QueueURL string `json:"uri" yaml:"uri"`
	Region   string `json:"region" yaml:"region"`
}

// SNSPublisherConfig targets a topic. FIFO topics behave as FIFO queues do.
type SNSPublisherConfig struct {
	TopicARN string `json:"topic_arn" yaml:"topic_arn"`
	Region   string `json:"region" yaml:"region"`
}

// GCPPubSubPublisherConfig targets a Pub/Sub topic. Events are ordered per campaign.
type GCPPubSubPublisherConfig struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	Topic     string `json:"topic" yaml:"topic"`
}

// ConfigRegistry holds the entries of one publishers file in file order.
// It is read-only once loaded.
type ConfigRegistry struct {
	entries []PublisherConfig
	byID    map[string]int
}

// LoadRegistry reads a YAML or JSON publishers file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	file, err := decodeConfigFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return newConfigRegistry(file.Publishers)
}

// decodeConfigFile picks the decoder from the extension. Anything that is not
// ".json" goes through YAML, which reads JSON documents as well.
func decodeConfigFile(data []byte, ext string) (configFile, error) {
	var (
		file configFile
		err  error
	)
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return configFile{}, fmt.Errorf("decode publishers file: %w", err)
	}
	return file, nil
}

func newConfigRegistry(entries []PublisherConfig) (*ConfigRegistry, error) {
	if len(entries) == 0 {
		return nil, errors.New("publishers file declares no publishers")
	}

	reg := &ConfigRegistry{
		entries: make([]PublisherConfig, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		cfg := entry.normalized()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: duplicate publisher id %q", i, cfg.ID)
		}
		reg.byID[cfg.ID] = len(reg.entries)
		reg.entries = append(reg.entries, cfg)
	}
	return reg, nil
}

// normalized returns a trimmed copy of cfg with HTTP defaults applied.
func (cfg PublisherConfig) normalized() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.HTTP != nil {
		h := *cfg.HTTP
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = httpDefaultMethod
		}
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		h.Headers = cleanHeaders(h.Headers)
		cfg.HTTP = &h
	}
	if cfg.SQS != nil {
		cfg.SQS = &SQSPublisherConfig{
			QueueURL: strings.TrimSpace(cfg.SQS.QueueURL),
			Region:   strings.TrimSpace(cfg.SQS.Region),
		}
	}
	if cfg.SNS != nil {
		cfg.SNS = &SNSPublisherConfig{
			TopicARN: strings.TrimSpace(cfg.SNS.TopicARN),
			Region:   strings.TrimSpace(cfg.SNS.Region),
		}
	}
	if cfg.PubSub != nil {
		cfg.PubSub = &GCPPubSubPublisherConfig{
			ProjectID: strings.TrimSpace(cfg.PubSub.ProjectID),
			Topic:     strings.TrimSpace(cfg.PubSub.Topic),
		}
	}
	return cfg
}

// cleanHeaders drops headers whose name or value is blank.
func cleanHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type field struct {
	name  string
	value string
}

// validate checks the block selected by Type. Types without a built-in
// builder pass, so custom registries can serve them.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	switch cfg.Type {
	case "":
		return fmt.Errorf("publisher %q: type is required", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return cfg.missingBlock()
		}
		return requireFields(cfg.ID, cfg.Type, field{"url", cfg.HTTP.URL})
	case TypeSQS:
		if cfg.SQS == nil {
			return cfg.missingBlock()
		}
		return requireFields(cfg.ID, cfg.Type, field{"uri", cfg.SQS.QueueURL}, field{"region", cfg.SQS.Region})
	case TypeSNS:
		if cfg.SNS == nil {
			return cfg.missingBlock()
		}
		return requireFields(cfg.ID, cfg.Type, field{"topic_arn", cfg.SNS.TopicARN}, field{"region", cfg.SNS.Region})
	case TypeGCPPubSub:
		if cfg.PubSub == nil {
			return cfg.missingBlock()
		}
		return requireFields(cfg.ID, cfg.Type, field{"project_id", cfg.PubSub.ProjectID}, field{"topic", cfg.PubSub.Topic})
	}
	return nil
}

func (cfg PublisherConfig) missingBlock() error {
	return fmt.Errorf("publisher %q: %s block is required", cfg.ID, cfg.Type)
}

func requireFields(id, block string, fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, block+"."+f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("publisher %q: %s required", id, strings.Join(missing, ", "))
}

// EnabledValue reports whether the entry is enabled; entries are enabled unless
// they say otherwise.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// ByID returns the entry with the given id, enabled or not.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.entries[i], true
}

// Enabled returns the enabled entries in file order.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	var out []PublisherConfig
	for _, cfg := range r.entries {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
