package coupon

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strconv"

	"github.com/madefire/madefire-go/pkg/api"
)

const passwordKey = "password"

// Service exposes the coupon endpoints of the Madefire API.
type Service struct {
	transport *api.Transport
}

// NewService binds the coupon endpoints to a transport.
func NewService(t *api.Transport) *Service {
	return &Service{transport: t}
}

// CampaignPath is the resource path of a campaign.
func CampaignPath(slug string) string {
	return "coupon/campaign/" + url.PathEscape(slug) + "/"
}

// RedemptionPath is the resource path of a campaign's redemption sub-resource.
func RedemptionPath(slug string) string {
	return CampaignPath(slug) + "redemption/"
}

// GetCampaign fetches a campaign by slug. Unknown, pending, ungenerated or
// inactive campaigns fail with 404; expired ones with 410.
func (s *Service) GetCampaign(ctx context.Context, slug string) (Campaign, error) {
	if s == nil || s.transport == nil {
		return Campaign{}, errors.New("coupon service is not initialized")
	}
	var c Campaign
	if err := s.transport.Send(ctx, api.Get(CampaignPath(slug)), &c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

// PostRedemption redeems a code for a campaign, registering or validating the user.
// A present password is replaced by its digest in a copy; req is left untouched.
// Field validation, exhausted codes and campaign state are decided by the server.
func (s *Service) PostRedemption(ctx context.Context, slug string, req RedemptionRequest) (RedemptionResult, error) {
	payload := req
	if req.Password != nil {
		payload.Password = String(api.HashPassword(*req.Password))
	}
	return s.postRedemption(ctx, slug, payload)
}

// PostRedemptionPayload is PostRedemption for free-form payloads. Any present
// "password" value is stringified and hashed in a shallow copy; a missing key
// is never added.
func (s *Service) PostRedemptionPayload(ctx context.Context, slug string, data map[string]any) (RedemptionResult, error) {
	payload := maps.Clone(data)
	if payload == nil {
		payload = map[string]any{}
	}
	if pw, ok := payload[passwordKey]; ok {
		payload[passwordKey] = api.HashPassword(passwordText(pw))
	}
	return s.postRedemption(ctx, slug, payload)
}

func (s *Service) postRedemption(ctx context.Context, slug string, payload any) (RedemptionResult, error) {
	if s == nil || s.transport == nil {
		return RedemptionResult{}, errors.New("coupon service is not initialized")
	}
	raw, err := s.transport.SendRaw(ctx, api.Post(RedemptionPath(slug), payload))
	if err != nil {
		return RedemptionResult{}, err
	}
	return RedemptionResult{Raw: raw}, nil
}

// passwordText renders a password value as text before hashing. nil becomes
// "null" and floats use their shortest decimal form.
func passwordText(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(p), 'f', -1, 32)
	default:
		return fmt.Sprint(p)
	}
}
