package food

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestParquet создает parquet-файл со структурой выгрузки OpenFoodFacts
func writeTestParquet(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "food.parquet")
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(`
		COPY (
			SELECT
				[{'lang': 'main', 'text': 'Apple'}] AS product_name,
				[{'lang': 'main', 'text': 'Fruit'}] AS generic_name,
				[{'name': 'fat', '100g': 0.2}, {'name': 'proteins', '100g': 0.3}, {'name': 'carbohydrates', '100g': 14.0}] AS nutriments
			UNION ALL
			SELECT
				[{'lang': 'main', 'text': 'Apple juice'}],
				[{'lang': 'main', 'text': 'Juice'}],
				[{'name': 'energy-kcal', '100g': 46.0}]
			UNION ALL
			SELECT
				[{'lang': 'main', 'text': 'Bread'}],
				[{'lang': 'main', 'text': 'Bakery'}],
				[{'name': 'energy', '100g': 1000.0}]
		) TO '%s' (FORMAT PARQUET)`, path))
	require.NoError(t, err)

	return path
}

func TestParquetSearcher_Search(t *testing.T) {
	path := writeTestParquet(t)

	searcher, err := NewParquetSearcher(path, 10, testLogger())
	require.NoError(t, err)
	defer searcher.Close()

	ctx := context.Background()
	require.NoError(t, searcher.TestConnection(ctx))

	candidates, err := searcher.Search(ctx, "apple")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	match, err := Resolve("apple", candidates)
	require.NoError(t, err)
	assert.Equal(t, "Apple", match.Name)
	assert.InDelta(t, 9*0.2+4*(0.3+14.0), match.CaloriesPer100g, 1e-6)
}

func TestParquetSearcher_MissingFile(t *testing.T) {
	searcher, err := NewParquetSearcher("/nonexistent/food.parquet", 10, testLogger())
	require.NoError(t, err)
	defer searcher.Close()

	assert.Error(t, searcher.TestConnection(context.Background()))
}

func TestLocalizedText(t *testing.T) {
	assert.Equal(t, "Apple", localizedText(sql.NullString{String: `"Apple"`, Valid: true}))
	assert.Equal(t, "Pomme", localizedText(sql.NullString{String: `[{"lang":"fr","text":"Pomme"}]`, Valid: true}))
	assert.Equal(t, "Apple", localizedText(sql.NullString{String: `[{"lang":"fr","text":"Pomme"},{"lang":"main","text":"Apple"}]`, Valid: true}))
	assert.Equal(t, "", localizedText(sql.NullString{}))
}
