package food

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/awhatson15/nutrition-bot/models"
)

// ParquetSearcher ищет продукты в локальной выгрузке OpenFoodFacts (parquet) через DuckDB
type ParquetSearcher struct {
	db          *sql.DB
	parquetPath string
	limit       int
	log         *slog.Logger
}

// Ensure ParquetSearcher implements Searcher
var _ Searcher = (*ParquetSearcher)(nil)

// NewParquetSearcher открывает DuckDB в памяти для запросов к parquet-файлу
func NewParquetSearcher(parquetPath string, limit int, logger *slog.Logger) (*ParquetSearcher, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть duckdb: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}
	return &ParquetSearcher{
		db:          db,
		parquetPath: parquetPath,
		limit:       limit,
		log:         logger,
	}, nil
}

// Close закрывает соединение DuckDB
func (s *ParquetSearcher) Close() error {
	return s.db.Close()
}

// TestConnection проверяет доступность parquet-файла
func (s *ParquetSearcher) TestConnection(ctx context.Context) error {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM read_parquet(?)`, s.parquetPath).Scan(&count); err != nil {
		return fmt.Errorf("не удалось прочитать %s: %w", s.parquetPath, err)
	}
	s.log.Info("Локальная база продуктов доступна", "path", s.parquetPath, "total_records", count)
	return nil
}

// Search возвращает продукты, в названии которых встречается запрос
func (s *ParquetSearcher) Search(ctx context.Context, query string) ([]Candidate, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			CAST(to_json(product_name) AS VARCHAR),
			CAST(to_json(generic_name) AS VARCHAR),
			CAST(to_json(nutriments) AS VARCHAR)
		FROM read_parquet(?)
		WHERE CAST(product_name AS VARCHAR) ILIKE ?
		LIMIT ?`,
		s.parquetPath, "%"+query+"%", s.limit,
	)
	if err != nil {
		s.log.Error("Ошибка запроса к DuckDB", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("ошибка поиска в локальной базе продуктов: %v: %w", err, models.ErrExternalUnavailable)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var productName, genericName, nutriments sql.NullString
		if err := rows.Scan(&productName, &genericName, &nutriments); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании продукта: %w", err)
		}

		name := localizedText(productName)
		if name == "" {
			name = localizedText(genericName)
		}
		candidates = append(candidates, Candidate{
			Name:       name,
			Nutriments: ParseNutriments(nutrimentsMap(nutriments)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по продуктам: %w", err)
	}

	s.log.Debug("Поиск в локальной базе продуктов завершен", "query", query, "count", len(candidates), "duration", time.Since(start))
	return candidates, nil
}

// localizedText достает название: в выгрузке это либо строка, либо список {lang, text}
func localizedText(raw sql.NullString) string {
	if !raw.Valid || raw.String == "" {
		return ""
	}

	var plain string
	if err := json.Unmarshal([]byte(raw.String), &plain); err == nil {
		return plain
	}

	var texts []struct {
		Lang string `json:"lang"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw.String), &texts); err != nil {
		return ""
	}
	for _, t := range texts {
		if t.Lang == "main" && t.Text != "" {
			return t.Text
		}
	}
	for _, t := range texts {
		if t.Text != "" {
			return t.Text
		}
	}
	return ""
}

// nutrimentsMap приводит nutriments выгрузки к словарю вида fat_100g -> значение
func nutrimentsMap(raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return nil
	}

	var flat map[string]any
	if err := json.Unmarshal([]byte(raw.String), &flat); err == nil {
		return flat
	}

	var list []map[string]any
	if err := json.Unmarshal([]byte(raw.String), &list); err != nil {
		return nil
	}
	out := make(map[string]any, len(list))
	for _, n := range list {
		name, _ := n["name"].(string)
		if name == "" {
			continue
		}
		if v, ok := n["100g"]; ok && v != nil {
			out[name+"_100g"] = v
		}
	}
	return out
}
