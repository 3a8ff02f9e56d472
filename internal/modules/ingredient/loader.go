package ingredient

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"foodgram/internal/domain"
)

type getOrCreator interface {
	GetOrCreate(ctx context.Context, name, measurementUnit string) (*domain.Ingredient, bool, error)
}

// Loader наполняет справочник ингредиентов из CSV-строк
// (name, measurement_unit). Повторная загрузка того же файла ничего
// не дублирует: каждая строка идёт через get-or-create.
type Loader struct {
	repo getOrCreator
}

func NewLoader(repo getOrCreator) *Loader {
	return &Loader{repo: repo}
}

// LoadResult — сводка одной загрузки.
type LoadResult struct {
	Rows    int
	Created int
	Skipped int
}

func (l *Loader) Load(ctx context.Context, r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // в исходных данных встречаются лишние колонки

	res := &LoadResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("csv read: %w", err)
		}
		if len(record) < 2 {
			return res, fmt.Errorf("row %d: expected at least 2 columns, got %d", res.Rows+1, len(record))
		}

		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			res.Skipped++
			res.Rows++
			continue
		}

		_, created, err := l.repo.GetOrCreate(ctx, name, unit)
		if err != nil {
			return res, fmt.Errorf("row %d (%s): %w", res.Rows+1, name, err)
		}
		if created {
			res.Created++
		}
		res.Rows++
	}
	return res, nil
}
