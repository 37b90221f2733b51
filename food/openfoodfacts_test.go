package food

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awhatson15/nutrition-bot/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenFoodFactsClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "greek yogurt", r.URL.Query().Get("search_terms"))
		assert.Equal(t, "5", r.URL.Query().Get("page_size"))
		assert.Equal(t, "1", r.URL.Query().Get("json"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"count": 2,
			"products": [
				{"product_name": "", "generic_name": "Yogurt", "nutriments": {"energy_100g": "400"}},
				{"product_name": "Greek Yogurt", "nutriments": {"fat_100g": 10, "proteins_100g": 9, "carbohydrates_100g": 4}}
			]
		}`))
	}))
	defer server.Close()

	client := NewOpenFoodFactsClient(server.URL, 5, server.Client(), testLogger())
	candidates, err := client.Search(context.Background(), "greek yogurt")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Yogurt", candidates[0].Name)
	require.NotNil(t, candidates[0].Nutriments.EnergyKJ)
	assert.Equal(t, 400.0, *candidates[0].Nutriments.EnergyKJ)

	match, err := Resolve("greek yogurt", candidates)
	require.NoError(t, err)
	assert.Equal(t, "Greek yogurt", match.Name)
	assert.InDelta(t, 142.0, match.CaloriesPer100g, 1e-9)
}

func TestOpenFoodFactsClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "broken json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"products": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewOpenFoodFactsClient(server.URL, 10, server.Client(), testLogger())
			_, err := client.Search(context.Background(), "apple")
			assert.ErrorIs(t, err, models.ErrExternalUnavailable)
		})
	}
}

func TestOpenFoodFactsClient_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 0, "products": []}`))
	}))
	defer server.Close()

	client := NewOpenFoodFactsClient(server.URL, 10, server.Client(), testLogger())
	candidates, err := client.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, err = Resolve("nothing", candidates)
	assert.ErrorIs(t, err, ErrNotFound)
}
