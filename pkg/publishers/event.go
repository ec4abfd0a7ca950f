package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/madefire/madefire-go/pkg/coupon"
)

// EventTypeRedemption identifies a successful coupon redemption.
const EventTypeRedemption = "coupon.redemption"

// Event represents the payload published downstream. It never carries the
// password, in plaintext or digested form.
type Event struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	CampaignSlug string          `json:"campaign_slug"`
	Code         string          `json:"code,omitempty"`
	Email        string          `json:"email,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewRedemptionEvent constructs an Event for a redemption the server accepted.
func NewRedemptionEvent(slug string, req coupon.RedemptionRequest, res coupon.RedemptionResult) Event {
	evt := Event{
		ID:           uuid.NewString(),
		Type:         EventTypeRedemption,
		CampaignSlug: slug,
		Result:       res.Raw,
		OccurredAt:   time.Now().UTC(),
	}
	if req.Code != nil {
		evt.Code = *req.Code
	}
	if req.Email != nil {
		evt.Email = *req.Email
	}
	return evt
}

// encode renders the message body shared by the queue and topic sinks.
func (e Event) encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(b), nil
}

// attributes are the message attributes shared by the queue/topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type":    e.Type,
		"campaign_slug": e.CampaignSlug,
	}
}
