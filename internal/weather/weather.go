// Package weather supplies the environmental modifiers the simulation
// consumes: multiplicative factors on production and happiness deltas.
// Conditions come from OpenWeatherMap when an API key is configured,
// otherwise from seasonal defaults. Fetching happens on a polling
// goroutine; the tick path only ever reads the cache.
package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/talgya/nanoverse/internal/clock"
)

// Client fetches weather data from OpenWeatherMap.
type Client struct {
	apiKey   string
	location string
	client   *http.Client

	mu          sync.Mutex
	cached      *Conditions
	cachedAt    time.Time
	cacheTTL    time.Duration
	lastFailAt  time.Time
	failBackoff time.Duration
}

// NewClient creates a weather API client. Returns nil if apiKey is empty.
func NewClient(apiKey, location string) *Client {
	if apiKey == "" {
		return nil
	}
	if location == "" {
		location = "San Diego,US"
	}
	return &Client{
		apiKey:   apiKey,
		location: location,
		client:   &http.Client{Timeout: 10 * time.Second},
		cacheTTL: 5 * time.Minute,
	}
}

// Conditions holds parsed weather data from the API.
type Conditions struct {
	Temp        float64 `json:"temp"` // Celsius
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"` // m/s
	IsStorm     bool    `json:"is_storm"`
	IsSnow      bool    `json:"is_snow"`
	IsRain      bool    `json:"is_rain"`
	IsClear     bool    `json:"is_clear"`
}

// Fetch retrieves current conditions, using the cache if fresh. Repeated
// failures back off up to 10 minutes; a stale cache is preferred over an
// error.
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

// Cached returns the last successfully fetched conditions without touching
// the network. Nil until the first fetch completes.
func (c *Client) Cached() *Conditions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}

func (c *Client) fetchFromAPI() (*Conditions, error) {
	apiURL := fmt.Sprintf("https://api.openweathermap.org/data/2.5/weather?q=%s&appid=%s&units=metric",
		url.QueryEscape(c.location), c.apiKey)

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

	var owm struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}

	if err := json.Unmarshal(body, &owm); err != nil {
		return nil, fmt.Errorf("parse weather: %w", err)
	}

	conditions := &Conditions{
		Temp:      owm.Main.Temp,
		WindSpeed: owm.Wind.Speed,
	}

	if len(owm.Weather) > 0 {
		conditions.Description = owm.Weather[0].Description
		main := strings.ToLower(owm.Weather[0].Main)
		conditions.IsClear = main == "clear"
		conditions.IsRain = main == "rain" || main == "drizzle"
		conditions.IsSnow = main == "snow"
		conditions.IsStorm = main == "thunderstorm" || conditions.WindSpeed > 15
	}

	slog.Debug("weather fetched", "temp", conditions.Temp, "desc", conditions.Description)
	return conditions, nil
}

// Modifiers is what the simulation core reads once per tick.
type Modifiers struct {
	Production  float64 // multiplier on BIO output
	Happiness   float64 // multiplier on happiness gains
	Description string
}

// Neutral is the no-weather baseline.
func Neutral() Modifiers {
	return Modifiers{Production: 1.0, Happiness: 1.0, Description: "calm"}
}

// MapToSim converts conditions to simulation modifiers. Clear daytime skies
// boost solar-fed production; rain, snow, and storms cut production and
// dampen happiness gains.
func MapToSim(c *Conditions, season clock.Season, daytime bool) Modifiers {
	m := Neutral()
	if c == nil {
		m.Description = seasonDefault(season)
		return m
	}
	m.Description = c.Description

	switch {
	case c.IsStorm:
		m.Production = 0.4
		m.Happiness = 0.6
	case c.IsSnow:
		m.Production = 0.6
		m.Happiness = 0.7
	case c.IsRain:
		m.Production = 0.7
		m.Happiness = 0.8
	case c.IsClear && daytime:
		m.Production = 1.5
		m.Happiness = 1.2
	}
	return m
}

// Provider wraps the optional client behind the interface the simulation
// consumes. A nil client yields seasonal defaults.
type Provider struct {
	Client *Client
}

// Current returns the modifiers in effect for a season and day/night phase.
// It reads only the cache; until Poll has fetched something (or when no
// client is configured) the seasonal defaults apply.
func (p *Provider) Current(season clock.Season, daytime bool) Modifiers {
	if p == nil || p.Client == nil {
		return MapToSim(nil, season, daytime)
	}
	return MapToSim(p.Client.Cached(), season, daytime)
}

// Poll refreshes the cached conditions at the given cadence. Run it on its
// own goroutine; Fetch handles the cache TTL and failure backoff, so a
// short interval is safe.
func (p *Provider) Poll(interval time.Duration) {
	if p == nil || p.Client == nil {
		return
	}
	for {
		if _, err := p.Client.Fetch(); err != nil {
			slog.Warn("weather refresh failed", "error", err)
		}
		time.Sleep(interval)
	}
}

func seasonDefault(season clock.Season) string {
	switch season {
	case clock.SeasonSpring:
		return "mild spring weather"
	case clock.SeasonSummer:
		return "warm summer sun"
	case clock.SeasonAutumn:
		return "cool autumn breeze"
	case clock.SeasonWinter:
		return "cold winter chill"
	default:
		return "fair weather"
	}
}
