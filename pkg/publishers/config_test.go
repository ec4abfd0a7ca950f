package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
	if enabled[0].HTTP.Method != "POST" || enabled[0].HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected http defaults, got %#v", enabled[0].HTTP)
	}
	if _, ok := reg.ByID("http1"); !ok {
		t.Fatalf("expected disabled publisher to remain addressable by id")
	}
}

func TestLoadRegistryJSONWithCloudSinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers": [
  {"id": "audit-sns", "type": "sns", "sns": {"topic_arn": " arn:aws:sns:eu-west-1:1:audit ", "region": "eu-west-1"}},
  {"id": "audit-ps", "type": "GCP_PUBSUB", "gcp_pubsub": {"project_id": "p", "topic": "t"}}
]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	sns, ok := reg.ByID("audit-sns")
	if !ok || sns.SNS.TopicARN != "arn:aws:sns:eu-west-1:1:audit" {
		t.Fatalf("unexpected sns config %#v", sns.SNS)
	}
	ps, ok := reg.ByID("audit-ps")
	if !ok || ps.Type != TypeGCPPubSub {
		t.Fatalf("expected lower-cased pubsub type, got %#v", ps)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: dup
    type: http
    http: {url: https://a.example}
  - id: dup
    type: http
    http: {url: https://b.example}
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate publisher error")
	}
}

func TestPublisherConfigValidateRejectsMissingFields(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "s1", Type: TypeSNS},
		{ID: "p1", Type: TypeGCPPubSub, PubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
		{ID: "h2", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "  "}},
		{ID: "t1"},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := cfg.normalized().validate(); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestLoadRegistryRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yml")
	if err := os.WriteFile(path, []byte("publishers: []\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for empty publishers list")
	}
}

func TestNormalizedDropsBlankHeaders(t *testing.T) {
	cfg := PublisherConfig{
		ID:   " hook ",
		Type: " HTTP ",
		HTTP: &HTTPPublisherConfig{
			URL:     "https://example.com",
			Method:  "put",
			Headers: map[string]string{" X-Token ": " abc ", "X-Empty": " "},
		},
	}
	got := cfg.normalized()
	if got.ID != "hook" || got.Type != TypeHTTP || got.HTTP.Method != "PUT" {
		t.Fatalf("unexpected normalized config %#v", got)
	}
	if len(got.HTTP.Headers) != 1 || got.HTTP.Headers["X-Token"] != "abc" {
		t.Fatalf("unexpected headers %#v", got.HTTP.Headers)
	}
	if cfg.HTTP.Method != "put" {
		t.Fatalf("normalized must not modify the original")
	}
}
