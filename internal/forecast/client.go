package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ecocampmy/campsite-chat-service/internal/models"
	"github.com/ecocampmy/campsite-chat-service/internal/observability"
)

// Client retrieves a multi-day forecast for a coordinate pair. Failures are
// soft from the orchestrator's perspective: it treats any error as "forecast
// unavailable" and continues.
type Client interface {
	FiveDay(ctx context.Context, lat, lon float64) ([]models.DayForecast, error)
}

var (
	ErrMissingAPIKey   = errors.New("weather API key not configured")
	ErrUpstreamFailure = errors.New("weather upstream failure")
)

// OpenWeatherClient calls the OpenWeather 5-day/3-hour forecast feed.
type OpenWeatherClient struct {
	apiKey  string
	apiURL  string
	timeout time.Duration
	client  *http.Client
}

// NewOpenWeatherClient builds a client. An empty API key is allowed; FiveDay
// then fails soft with ErrMissingAPIKey instead of calling out.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// forecastResponse is the subset of the feed we read: one point per 3-hour
// step, each with a local date-time string, a temperature, and a weather
// category label.
type forecastResponse struct {
	List []forecastPoint `json:"list"`
}

type forecastPoint struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	DtTxt string `json:"dt_txt"`
}

// FiveDay fetches the forecast feed and aggregates it into at most 5 daily
// summaries.
func (c *OpenWeatherClient) FiveDay(ctx context.Context, lat, lon float64) ([]models.DayForecast, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, lat, lon)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	var feed forecastResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return Summarize(feed.List), nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, lat, lon float64) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "error"
}
