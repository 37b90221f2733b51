// Package weather получает текущую температуру в городе через OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/awhatson15/nutrition-bot/models"
)

// DefaultURL адрес API текущей погоды OpenWeatherMap
const DefaultURL = "https://api.openweathermap.org/data/2.5/weather"

// ErrUnavailable температуру получить не удалось
var ErrUnavailable = fmt.Errorf("погода недоступна: %w", models.ErrExternalUnavailable)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client клиент OpenWeatherMap
type Client struct {
	baseURL    string
	apiKey     string
	httpClient doer
	log        *slog.Logger
}

// NewClient создает клиент погоды
func NewClient(baseURL, apiKey string, httpClient doer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        logger,
	}
}

type currentWeather struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// Temperature возвращает текущую температуру в городе в °C
func (c *Client) Temperature(ctx context.Context, city string) (float64, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка при создании запроса погоды: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Ошибка запроса погоды", "city", city, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Сервис погоды вернул ошибку", "city", city, "status", resp.StatusCode)
		return 0, fmt.Errorf("%w: статус %s", ErrUnavailable, resp.Status)
	}

	var body currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: ошибка разбора ответа: %v", ErrUnavailable, err)
	}
	if body.Main == nil || body.Main.Temp == nil {
		return 0, fmt.Errorf("%w: в ответе нет температуры", ErrUnavailable)
	}

	c.log.Debug("Температура получена", "city", city, "temp", *body.Main.Temp, "duration", time.Since(start))
	return *body.Main.Temp, nil
}
