package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WeatherServiceProvider fetches current conditions for weather-aware outfit
// scoring. Open-Meteo is the backing API, no key required.
type WeatherServiceProvider interface {
	GetCurrentWeather(ctx context.Context, latitude, longitude float64) (*WeatherReport, error)
}

type WeatherReport struct {
	TemperatureF     float64 `json:"temperature_f"`
	FeelsLikeF       float64 `json:"feels_like_f"`
	PrecipitationPct float64 `json:"precipitation_pct"`
	HumidityPct      float64 `json:"humidity_pct"`
	WindMph          float64 `json:"wind_mph"`
}

// Summary renders the report for logs, push bodies and LLM prompts.
func (w *WeatherReport) Summary() string {
	return fmt.Sprintf("%.0f°F (feels like %.0f°F), %.0f%% chance of rain, wind %.0f mph", w.TemperatureF, w.FeelsLikeF, w.PrecipitationPct, w.WindMph)
}

type OpenMeteoService struct {
	BaseURL string
}

type openMeteoResponse struct {
	Current struct {
		Temperature2m            float64 `json:"temperature_2m"`
		ApparentTemperature      float64 `json:"apparent_temperature"`
		RelativeHumidity2m       float64 `json:"relative_humidity_2m"`
		WindSpeed10m             float64 `json:"wind_speed_10m"`
		PrecipitationProbability float64 `json:"precipitation_probability"`
	} `json:"current"`
	Hourly struct {
		PrecipitationProbability []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

func (service *OpenMeteoService) GetCurrentWeather(ctx context.Context, latitude, longitude float64) (*WeatherReport, error) {
	baseURL := service.BaseURL
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%f&longitude=%f&current=temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m&hourly=precipitation_probability&forecast_days=1&temperature_unit=fahrenheit&wind_speed_unit=mph",
		baseURL, latitude, longitude,
	)

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather request: %v", err)
	}
	res, err := client.Do(req)
	if err != nil {
		fmt.Println("Error fetching weather:", err)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("weather API returned %d: %s", res.StatusCode, string(body))
	}

	var parsed openMeteoResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %v", err)
	}

	report := WeatherReport{
		TemperatureF: parsed.Current.Temperature2m,
		FeelsLikeF:   parsed.Current.ApparentTemperature,
		HumidityPct:  parsed.Current.RelativeHumidity2m,
		WindMph:      parsed.Current.WindSpeed10m,
	}
	// probability comes from the hourly series, peak over the next few hours
	hours := parsed.Hourly.PrecipitationProbability
	if len(hours) > 6 {
		hours = hours[:6]
	}
	for _, probability := range hours {
		if probability > report.PrecipitationPct {
			report.PrecipitationPct = probability
		}
	}
	return &report, nil
}
