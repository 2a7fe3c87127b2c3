// Package openweather is the adapter for the OpenWeather API: current
// conditions and the 3-hourly forecast reduced to today's maximum
// precipitation probability.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wlp-app/wlp/internal/notify"
)

// Client talks to the OpenWeather data API.
type Client struct {
	baseURL    string
	apiKey     string
	units      string
	httpClient *http.Client
}

// NewClient creates an OpenWeather client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		units:   "metric",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Current is the subset of the current-conditions response the app uses.
type Current struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

type forecastResponse struct {
	List []struct {
		Dt  int64   `json:"dt"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

// CurrentByCoords fetches current conditions for a coordinate pair.
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64) (*Current, error) {
	var current Current
	if err := c.get(ctx, "/weather", lat, lon, &current); err != nil {
		return nil, err
	}
	return &current, nil
}

// TodayMaxPop scans the 3-hourly forecast and returns the maximum
// precipitation probability among today's slots. Returns -1 when the
// forecast holds no slot for today (e.g. shortly before midnight).
func (c *Client) TodayMaxPop(ctx context.Context, lat, lon float64, now time.Time) (float64, error) {
	var forecast forecastResponse
	if err := c.get(ctx, "/forecast", lat, lon, &forecast); err != nil {
		return 0, err
	}

	today := now.Day()
	max := -1.0
	for _, slot := range forecast.List {
		t := time.Unix(slot.Dt, 0).In(now.Location())
		if t.Day() != today {
			continue
		}
		if slot.Pop > max {
			max = slot.Pop
		}
	}
	return max, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64, out any) error {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &notify.StatusError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(raw)),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return notify.NewAppError(notify.KindSchema, "weather response is not valid JSON", err)
	}
	return nil
}
