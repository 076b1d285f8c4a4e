package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"shortr/internal/platform/config"
)

// Resolver turns a client address into a coarse "<city>, <region>, <country>" string.
type Resolver interface {
	Locate(ctx context.Context, ip string) (string, error)
}

var ErrLookupFailed = errors.New("geolocation lookup failed")

type ipapiResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Error   bool   `json:"error"`
	Reason  string `json:"reason"`
}

// IPAPIResolver queries an ipapi.co compatible endpoint.
type IPAPIResolver struct {
	endpoint string
	client   *http.Client
}

func NewIPAPIResolver(cfg config.GeoIPConfig) *IPAPIResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &IPAPIResolver{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *IPAPIResolver) Locate(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL(ip), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d", ErrLookupFailed, resp.StatusCode)
	}

	var data ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if data.Error {
		return "", fmt.Errorf("%w: %s", ErrLookupFailed, data.Reason)
	}
	if data.City == "" && data.Region == "" && data.Country == "" {
		return "", fmt.Errorf("%w: empty response", ErrLookupFailed)
	}

	return fmt.Sprintf("%s, %s, %s", data.City, data.Region, data.Country), nil
}

// lookupURL asks about the client address when it is publicly routable and
// falls back to the caller's own address otherwise.
func (r *IPAPIResolver) lookupURL(ip string) string {
	if parsed := net.ParseIP(ip); parsed != nil && isPublic(parsed) {
		return fmt.Sprintf("%s/%s/json/", r.endpoint, parsed.String())
	}
	return r.endpoint + "/json/"
}

func isPublic(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast())
}

// StaticResolver always answers with the same location. Used when lookups are
// disabled and in tests.
type StaticResolver struct {
	Location string
	Err      error
}

func (r *StaticResolver) Locate(ctx context.Context, ip string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	return r.Location, nil
}
