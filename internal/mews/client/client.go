// Package client provides the HTTP client for the Mews Connector API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mews_bridge_backend/internal/mews"
	"mews_bridge_backend/internal/mews/transport"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/logger"

	"golang.org/x/time/rate"
)

const (
	apiPrefix     = "/api/connector/v1"
	clientName    = "mews-bridge-backend 1.0"
	defaultRPS    = 5
	requestTimeout = 30 * time.Second
)

// Client is the HTTP client for the Mews Connector API. All methods return
// normalized domain types; raw wire shapes never leave this package.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	clientToken string
	accessToken string
	limiter     *rate.Limiter
	log         *logger.Logger
}

// New creates a new Mews Connector API client.
func New(cfg config.MewsConfig, log *logger.Logger) *Client {
	rps := cfg.GetMewsRequestsPerSecond()
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     cfg.GetMewsBaseURL(),
		clientToken: cfg.GetMewsClientToken(),
		accessToken: cfg.GetMewsAccessToken(),
		limiter:     rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		log:         log,
	}
}

type timeFilter struct {
	StartUtc string `json:"StartUtc"`
	EndUtc   string `json:"EndUtc"`
}

type reservationsRequest struct {
	ClientToken  string      `json:"ClientToken"`
	AccessToken  string      `json:"AccessToken"`
	Client       string      `json:"Client"`
	ServiceIds   []string    `json:"ServiceIds"`
	CollidingUtc timeFilter  `json:"CollidingUtc"`
}

type orderItemsRequest struct {
	ClientToken string     `json:"ClientToken"`
	AccessToken string     `json:"AccessToken"`
	Client      string     `json:"Client"`
	ServiceIds  []string   `json:"ServiceIds"`
	CreatedUtc  timeFilter `json:"CreatedUtc"`
}

type productsRequest struct {
	ClientToken string   `json:"ClientToken"`
	AccessToken string   `json:"AccessToken"`
	Client      string   `json:"Client"`
	ServiceIds  []string `json:"ServiceIds"`
}

type availabilityRequest struct {
	ClientToken       string `json:"ClientToken"`
	AccessToken       string `json:"AccessToken"`
	Client            string `json:"Client"`
	ServiceId         string `json:"ServiceId"`
	FirstTimeUnitStartUtc string `json:"FirstTimeUnitStartUtc"`
	LastTimeUnitStartUtc  string `json:"LastTimeUnitStartUtc"`
}

// FetchReservations returns reservations colliding with the given UTC range
// for one service.
func (c *Client) FetchReservations(ctx context.Context, serviceID string, start, end time.Time) ([]mews.Reservation, error) {
	req := reservationsRequest{
		ClientToken: c.clientToken,
		AccessToken: c.accessToken,
		Client:      clientName,
		ServiceIds:  []string{serviceID},
		CollidingUtc: timeFilter{
			StartUtc: start.UTC().Format(time.RFC3339),
			EndUtc:   end.UTC().Format(time.RFC3339),
		},
	}

	var resp transport.ReservationsResponse
	if err := c.post(ctx, "/reservations/getAll", req, &resp); err != nil {
		return nil, fmt.Errorf("fetch reservations for service %s: %w", serviceID, err)
	}
	return mews.NormalizeReservations(resp.Reservations), nil
}

// FetchOrderItems returns order items created in the given UTC range for the
// given services.
func (c *Client) FetchOrderItems(ctx context.Context, serviceIDs []string, start, end time.Time) ([]mews.OrderItem, error) {
	req := orderItemsRequest{
		ClientToken: c.clientToken,
		AccessToken: c.accessToken,
		Client:      clientName,
		ServiceIds:  serviceIDs,
		CreatedUtc: timeFilter{
			StartUtc: start.UTC().Format(time.RFC3339),
			EndUtc:   end.UTC().Format(time.RFC3339),
		},
	}

	var resp transport.OrderItemsResponse
	if err := c.post(ctx, "/orderItems/getAll", req, &resp); err != nil {
		return nil, fmt.Errorf("fetch order items: %w", err)
	}
	return mews.NormalizeOrderItems(resp.OrderItems), nil
}

// FetchProducts returns the product catalog for one service.
func (c *Client) FetchProducts(ctx context.Context, serviceID string) ([]mews.Product, error) {
	req := productsRequest{
		ClientToken: c.clientToken,
		AccessToken: c.accessToken,
		Client:      clientName,
		ServiceIds:  []string{serviceID},
	}

	var resp transport.ProductsResponse
	if err := c.post(ctx, "/products/getAll", req, &resp); err != nil {
		return nil, fmt.Errorf("fetch products for service %s: %w", serviceID, err)
	}
	return mews.NormalizeProducts(resp.Products), nil
}

// FetchAvailability returns per-category availability for one service over
// the given time unit range.
func (c *Client) FetchAvailability(ctx context.Context, serviceID string, first, last time.Time) (mews.Availability, error) {
	req := availabilityRequest{
		ClientToken:           c.clientToken,
		AccessToken:           c.accessToken,
		Client:                clientName,
		ServiceId:             serviceID,
		FirstTimeUnitStartUtc: first.UTC().Format(time.RFC3339),
		LastTimeUnitStartUtc:  last.UTC().Format(time.RFC3339),
	}

	var resp transport.AvailabilityResponse
	if err := c.post(ctx, "/services/getAvailability", req, &resp); err != nil {
		return mews.Availability{}, fmt.Errorf("fetch availability for service %s: %w", serviceID, err)
	}
	return mews.NormalizeAvailability(resp), nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mews api %s: status %d: %s", path, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
