// Package homeassistant talks to the Home Assistant REST API: it reads zone
// entities and writes sensor states.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/domain"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// Client is a Home Assistant REST API client authenticated with a long-lived
// access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Home Assistant client.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetZone reads a zone entity such as zone.home.
func (c *Client) GetZone(ctx context.Context, entityID string) (domain.Zone, error) {
	var e entity
	if err := c.do(ctx, http.MethodGet, statesPath(entityID), nil, &e); err != nil {
		return domain.Zone{}, fmt.Errorf("get %s: %w", entityID, err)
	}

	z := domain.Zone{
		ID:        e.EntityID,
		Name:      e.Attributes.FriendlyName,
		Latitude:  e.Attributes.Latitude,
		Longitude: e.Attributes.Longitude,
		Radius:    e.Attributes.Radius,
	}
	if z.ID == "" {
		z.ID = entityID
	}
	if !z.HasLocation() {
		return domain.Zone{}, fmt.Errorf("get %s: entity has no latitude/longitude", entityID)
	}
	return z, nil
}

// Publish writes a sensor state. Home Assistant creates the entity when it
// does not exist yet.
func (c *Client) Publish(ctx context.Context, s domain.Snapshot) error {
	attrs, err := attributesMap(s)
	if err != nil {
		return err
	}
	body, err := json.Marshal(stateUpdate{State: s.State, Attributes: attrs})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, statesPath(s.SensorID), body, nil); err != nil {
		return fmt.Errorf("publish %s: %w", s.SensorID, err)
	}
	c.logger.Debug("published state to home assistant", "sensor", s.SensorID, "state", s.State)
	return nil
}

// Name identifies the sink in logs and metrics.
func (c *Client) Name() string { return "homeassistant" }

func (c *Client) do(ctx context.Context, method, p string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("home assistant API error: status %d: %s", resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// attributesMap flattens the sensor attributes and adds the presentation
// attributes Home Assistant reads from every entity.
func attributesMap(s domain.Snapshot) (map[string]any, error) {
	raw, err := json.Marshal(s.Attributes)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	attrs := make(map[string]any)
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	attrs["friendly_name"] = s.Name
	if s.Icon != "" {
		attrs["icon"] = s.Icon
	}
	return attrs, nil
}

func statesPath(entityID string) string {
	return "/api/states/" + url.PathEscape(entityID)
}

// Home Assistant API types.

type entity struct {
	EntityID   string           `json:"entity_id"`
	State      string           `json:"state"`
	Attributes entityAttributes `json:"attributes"`
}

type entityAttributes struct {
	FriendlyName string  `json:"friendly_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Radius       float64 `json:"radius"`
	Icon         string  `json:"icon"`
}

type stateUpdate struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}
