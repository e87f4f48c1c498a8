package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/util"
)

var ErrUnexpectedStatus = errors.New("backend returned unexpected status")

// tokenExpirySlack forces a re-login slightly before the session token
// actually expires so in-flight requests never carry a stale token.
const tokenExpirySlack = time.Minute

// Client talks to the hosted RoamNest API. It is constructed once at startup
// from the base URL and device access key; a malformed URL is a construction
// error the composition root treats as fatal misconfiguration. The client is
// immutable afterwards except for the session token it manages internally.
type Client struct {
	baseURL   *url.URL
	accessKey string
	http      *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL, accessKey string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("backend: empty base URL")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend: base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL:   parsed,
		accessKey: accessKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login exchanges the device access key for a bearer session token. The
// token's expiry is read from its JWT claims without signature verification;
// the backend owns the signing key, the client only needs the deadline.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"access_key": c.accessKey})
	if err != nil {
		return err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doRaw(ctx, http.MethodPost, "/api/v1/auth/device", bytes.NewReader(body), &resp); err != nil {
		return err
	}

	expiry, err := util.TokenExpiry(resp.Token)
	if err != nil {
		return fmt.Errorf("backend: inspect session token: %w", err)
	}

	c.mu.Lock()
	c.token = resp.Token
	c.tokenExpiry = expiry
	c.mu.Unlock()
	return nil
}

func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.token, c.tokenExpiry
	c.mu.Unlock()

	if token != "" && time.Until(expiry) > tokenExpirySlack {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	token = c.token
	c.mu.Unlock()
	return token, nil
}

// Place fetches one catalogued place by identifier.
func (c *Client) Place(ctx context.Context, id domain.PlaceID) (*domain.Place, error) {
	var place domain.Place
	path := "/api/v1/places/" + strconv.FormatInt(int64(id), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &place); err != nil {
		return nil, err
	}
	return &place, nil
}

// SearchPlaces queries the catalogue by free text.
func (c *Client) SearchPlaces(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	values := url.Values{}
	values.Set("query", strings.TrimSpace(query))
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Places []domain.Place `json:"places"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/places?"+values.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Places, nil
}

// NearbyPlaces lists catalogued places within radiusMeters of a coordinate.
func (c *Client) NearbyPlaces(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Place, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("radius", strconv.FormatFloat(radiusMeters, 'f', -1, 64))

	var resp struct {
		Places []domain.Place `json:"places"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/places/nearby?"+values.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Places, nil
}

// do performs an authenticated request, logging in first when the session
// token is missing or about to expire.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}
	return c.doRawWithAuth(ctx, method, path, body, dest, token)
}

func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, dest any) error {
	return c.doRawWithAuth(ctx, method, path, body, dest, "")
}

func (c *Client) doRawWithAuth(ctx context.Context, method, path string, body io.Reader, dest any, token string) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("backend: invalid request path %q: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s -> %d: %s", ErrUnexpectedStatus, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
