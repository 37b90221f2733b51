package food

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/awhatson15/nutrition-bot/models"
)

// DefaultSearchURL адрес поиска OpenFoodFacts
const DefaultSearchURL = "https://world.openfoodfacts.org/cgi/search.pl"

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenFoodFactsClient ищет продукты через API OpenFoodFacts
type OpenFoodFactsClient struct {
	searchURL  string
	pageSize   int
	httpClient doer
	log        *slog.Logger
}

// NewOpenFoodFactsClient создает клиент поиска продуктов
func NewOpenFoodFactsClient(searchURL string, pageSize int, httpClient doer, logger *slog.Logger) *OpenFoodFactsClient {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &OpenFoodFactsClient{
		searchURL:  searchURL,
		pageSize:   pageSize,
		httpClient: httpClient,
		log:        logger,
	}
}

type searchResponse struct {
	Products []struct {
		ProductName string         `json:"product_name"`
		GenericName string         `json:"generic_name"`
		Nutriments  map[string]any `json:"nutriments"`
	} `json:"products"`
}

// Search возвращает продукты в порядке выдачи OpenFoodFacts
func (c *OpenFoodFactsClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании запроса к OpenFoodFacts: %w", err)
	}
	req.Header.Set("User-Agent", "nutrition-bot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к OpenFoodFacts: %v: %w", err, models.ErrExternalUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenFoodFacts ответил %s: %w", resp.Status, models.ErrExternalUnavailable)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа OpenFoodFacts: %v: %w", err, models.ErrExternalUnavailable)
	}

	candidates := make([]Candidate, 0, len(body.Products))
	for _, p := range body.Products {
		name := p.ProductName
		if name == "" {
			name = p.GenericName
		}
		candidates = append(candidates, Candidate{
			Name:       name,
			Nutriments: ParseNutriments(p.Nutriments),
		})
	}

	c.log.Debug("Поиск в OpenFoodFacts завершен", "query", query, "count", len(candidates), "duration", time.Since(start))
	return candidates, nil
}
