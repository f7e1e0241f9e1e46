// Package weather feeds real-world conditions into the campus
// environment via the Open-Meteo API, which needs no key.
package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Client fetches current conditions for a fixed location.
type Client struct {
	latitude  float64
	longitude float64
	client    *http.Client

	mu          sync.Mutex
	cached      *Conditions
	cachedAt    time.Time
	cacheTTL    time.Duration
	lastFailAt  time.Time
	failBackoff time.Duration
}

// NewClient creates a weather client for the given coordinates.
func NewClient(latitude, longitude float64) *Client {
	return &Client{
		latitude:  latitude,
		longitude: longitude,
		client:    &http.Client{Timeout: 10 * time.Second},
		cacheTTL:  5 * time.Minute,
	}
}

// Conditions holds parsed weather data.
type Conditions struct {
	Temp      float64 `json:"temp"` // Celsius
	Condition string  `json:"condition"`
	WindSpeed float64 `json:"wind_speed"` // km/h
}

// Fetch retrieves current conditions, using cache if fresh. Repeated
// failures back off up to ten minutes; a stale cache beats an error.
func (c *Client) Fetch() (*Conditions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.cachedAt) < c.cacheTTL {
		return c.cached, nil
	}

	if c.failBackoff > 0 && time.Since(c.lastFailAt) < c.failBackoff {
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, fmt.Errorf("weather API backoff (%s remaining)", c.failBackoff-time.Since(c.lastFailAt))
	}

	conditions, err := c.fetchFromAPI()
	if err != nil {
		c.lastFailAt = time.Now()
		if c.failBackoff == 0 {
			c.failBackoff = 1 * time.Minute
		} else if c.failBackoff < 10*time.Minute {
			c.failBackoff *= 2
		}
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = conditions
	c.cachedAt = time.Now()
	c.failBackoff = 0
	return conditions, nil
}

func (c *Client) fetchFromAPI() (*Conditions, error) {
	apiURL := fmt.Sprintf(
		"https://api.open-meteo.com/v1/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,weather_code,wind_speed_10m",
		c.latitude, c.longitude)

	resp, err := c.client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("weather API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error %d: %s", resp.StatusCode, string(body))
	}

	var om struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}

	if err := json.Unmarshal(body, &om); err != nil {
		return nil, fmt.Errorf("parse weather: %w", err)
	}

	conditions := &Conditions{
		Temp:      om.Current.Temperature,
		Condition: ConditionLabel(om.Current.WeatherCode),
		WindSpeed: om.Current.WindSpeed,
	}

	slog.Debug("weather fetched", "temp", conditions.Temp, "condition", conditions.Condition)
	return conditions, nil
}

// ConditionLabel maps a WMO weather code to the French condition label
// shown in the environment panel.
func ConditionLabel(code int) string {
	switch {
	case code == 0:
		return "ensoleillé"
	case code <= 3:
		return "nuageux"
	case code == 45 || code == 48:
		return "brouillard"
	case code >= 51 && code <= 67:
		return "pluie"
	case code >= 71 && code <= 77:
		return "neige"
	case code >= 80 && code <= 82:
		return "averses"
	case code >= 85 && code <= 86:
		return "neige"
	case code >= 95:
		return "orage"
	default:
		return "variable"
	}
}
