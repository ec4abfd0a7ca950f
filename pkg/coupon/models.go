package coupon

import (
	"encoding/json"
	"errors"
	"time"
)

// Campaign is a coupon promotion as served by the coupon service. The client
// never recomputes Active; it is derived server-side from the date range and
// code availability.
type Campaign struct {
	Slug                 string `json:"slug"`
	Name                 string `json:"name"`
	App                  string `json:"app"`
	Bundle               string `json:"bundle"`
	ActivationDate       string `json:"activationDate"`
	ExpirationDate       string `json:"expirationDate"`
	Active               bool   `json:"active"`
	NumberOfCharacters   int    `json:"numberOfCharacters"`
	RedemptionsPerCoupon *int   `json:"redemptionsPerCoupon"`
}

// ActivationTime parses ActivationDate. ok is false when the date is absent or invalid.
func (c Campaign) ActivationTime() (time.Time, bool) {
	return parseDate(c.ActivationDate)
}

// ExpirationTime parses ExpirationDate. ok is false when the date is absent or invalid.
func (c Campaign) ExpirationTime() (time.Time, bool) {
	return parseDate(c.ExpirationDate)
}

// Unlimited reports whether codes may be redeemed any number of times.
func (c Campaign) Unlimited() bool {
	return c.RedemptionsPerCoupon == nil
}

func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RedemptionRequest carries the fields submitted with a redemption. A nil field
// is absent and omitted from the payload; a pointer to "" is sent as empty.
// Password holds plaintext; it is replaced by its digest before sending.
type RedemptionRequest struct {
	Code     *string `json:"code,omitempty"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// NewRedemptionRequest fills every field.
func NewRedemptionRequest(code, name, email, password string) RedemptionRequest {
	return RedemptionRequest{
		Code:     String(code),
		Name:     String(name),
		Email:    String(email),
		Password: String(password),
	}
}

// String returns a pointer to v.
func String(v string) *string { return &v }

// RedemptionResult is the server's opaque answer to a successful redemption.
type RedemptionResult struct {
	Raw json.RawMessage
}

// Decode unmarshals the result into v.
func (r RedemptionResult) Decode(v any) error {
	if len(r.Raw) == 0 {
		return errors.New("empty redemption result")
	}
	return json.Unmarshal(r.Raw, v)
}

// MarshalJSON emits the raw server payload unchanged.
func (r RedemptionResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}
