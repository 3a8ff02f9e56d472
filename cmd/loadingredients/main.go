package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/modules/ingredient"
	"foodgram/internal/repository"
)

// loadingredients наполняет справочник ингредиентов из CSV-файлов
// (name,measurement_unit). Повторный запуск ничего не дублирует.
//
//	go run ./cmd/loadingredients data/ingredients.csv
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: loadingredients <file.csv> [file.csv ...]")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	loader := ingredient.NewLoader(repository.NewIngredientRepository(db))
	ctx := context.Background()

	for _, path := range os.Args[1:] {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}

		res, err := loader.Load(ctx, f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}

		log.Printf("%s: rows=%d created=%d skipped=%d", path, res.Rows, res.Created, res.Skipped)
	}
}
