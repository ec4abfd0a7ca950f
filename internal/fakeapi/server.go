// Package fakeapi runs an in-process stand-in for the remote coupon service.
// It models the fixture campaigns the client suites exercise.
package fakeapi

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
)

// Fixture campaign slugs.
const (
	NonExistentCampaign = "mf-does-not-exist"
	PendingCampaign     = "mf-pending"
	UngeneratedCampaign = "mf-nx-current-active-ungenerated"
	UnlimitedCampaign   = "mf-nx-current-active-generated"
	LimitedCampaign     = "mf-1x-current-active-generated"
	InactiveCampaign    = "mf-nx-current-inactive-generated"
	ExpiredCampaign     = "mf-expired"
)

type campaign struct {
	body      map[string]any
	limit     int // 0 means unlimited
	expired   bool
	available bool
}

// Server records every redemption body it receives.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	campaigns map[string]campaign
	redeemed  map[string]int
	bodies    [][]byte
	malformed bool
}

// New starts a fake coupon service. Callers must Close it.
func New() *Server {
	s := &Server{
		campaigns: fixtures(),
		redeemed:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// ServeMalformed makes every subsequent 2xx answer carry a non-JSON body.
func (s *Server) ServeMalformed(v bool) {
	s.mu.Lock()
	s.malformed = v
	s.mu.Unlock()
}

// RedemptionBodies returns copies of the raw redemption bodies received so far.
func (s *Server) RedemptionBodies() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

func fixtures() map[string]campaign {
	mk := func(slug, name string, limit any) map[string]any {
		return map[string]any{
			"activationDate":       "1970-01-01T08:00:00Z",
			"active":               true,
			"app":                  "mf",
			"bundle":               "e-e55ed5d05eab46c1bdfeb37e331fca17",
			"expirationDate":       "2070-01-01T08:00:00Z",
			"name":                 name,
			"numberOfCharacters":   1,
			"redemptionsPerCoupon": limit,
			"slug":                 slug,
		}
	}
	return map[string]campaign{
		UnlimitedCampaign: {body: mk(UnlimitedCampaign, "MF Nx Current Active Generated", nil), available: true},
		LimitedCampaign:   {body: mk(LimitedCampaign, "MF 1x Current Active Generated", 1), limit: 1, available: true},
		ExpiredCampaign:   {expired: true},
		// pending, ungenerated and inactive campaigns exist but are not visible.
		PendingCampaign:     {},
		UngeneratedCampaign: {},
		InactiveCampaign:    {},
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, "/api/coupon/campaign/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.getCampaign(w, parts[0])
	case len(parts) == 2 && parts[1] == "redemption" && r.Method == http.MethodPost:
		s.postRedemption(w, r, parts[0])
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) lookup(slug string) (campaign, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[slug]
	switch {
	case !ok:
		return campaign{}, http.StatusNotFound
	case c.expired:
		return campaign{}, http.StatusGone
	case !c.available:
		return campaign{}, http.StatusNotFound
	}
	return c, http.StatusOK
}

func (s *Server) getCampaign(w http.ResponseWriter, slug string) {
	c, status := s.lookup(slug)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	s.writeJSON(w, http.StatusOK, c.body)
}

func (s *Server) postRedemption(w http.ResponseWriter, r *http.Request, slug string) {
	raw, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, raw)
	s.mu.Unlock()

	c, status := s.lookup(slug)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	code, okCode := nonEmpty(data, "code")
	name, okName := nonEmpty(data, "name")
	email, okEmail := nonEmpty(data, "email")
	password, okPassword := nonEmpty(data, "password")
	if !okCode || !okName || !okEmail || !okPassword {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(email); err != nil || !isDigest(password) || len(code) != 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	key := slug + "/" + code
	if c.limit > 0 && s.redeemed[key] >= c.limit {
		s.mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.redeemed[key]++
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"name":  name,
			"email": email,
		},
		"campaign": slug,
		"code":     code,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	s.mu.Lock()
	malformed := s.malformed
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if malformed {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func nonEmpty(data map[string]any, key string) (string, bool) {
	v, ok := data[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// emptyDigest is the MD5 digest of "", which the service treats as a missing password.
const emptyDigest = "d41d8cd98f00b204e9800998ecf8427e"

// isDigest rejects anything that does not look like a hex MD5 digest of a non-empty password.
func isDigest(v string) bool {
	if len(v) != 32 || v == emptyDigest {
		return false
	}
	_, err := hex.DecodeString(v)
	return err == nil
}
