package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"foodgram/internal/database"
	"foodgram/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "foodgram.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM shopping_carts")
	db.Exec("DELETE FROM favorites")
	db.Exec("DELETE FROM subscriptions")
	db.Exec("DELETE FROM ingredient_amounts")
	db.Exec("DELETE FROM recipe_tags")
	db.Exec("DELETE FROM recipes")
	db.Exec("DELETE FROM ingredients")
	db.Exec("DELETE FROM tags")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	users := []domain.User{}
	seedUsers := []struct {
		username  string
		email     string
		firstName string
		lastName  string
	}{
		{"chef_aruzhan", "aruzhan@mail.kz", "Аружан", "Сапарова"},
		{"bekzat_cooks", "bekzat@gmail.com", "Бекзат", "Ермеков"},
		{"dina_kitchen", "dina@yandex.kz", "Дина", "Абишева"},
	}
	for _, u := range seedUsers {
		hash, _ := bcrypt.GenerateFromPassword([]byte("foodgram123"), bcrypt.DefaultCost)
		user := domain.User{
			Username:     u.username,
			Email:        u.email,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			PasswordHash: string(hash),
		}
		db.Create(&user)
		users = append(users, user)
	}

	// ================== TAGS ==================
	log.Println("Creating tags...")
	tags := []domain.Tag{
		{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
		{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
	}
	for i := range tags {
		db.Create(&tags[i])
	}

	// ================== INGREDIENTS ==================
	log.Println("Creating ingredients...")
	ingredients := []domain.Ingredient{
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "яйцо", MeasurementUnit: "шт."},
		{Name: "молоко", MeasurementUnit: "мл"},
		{Name: "сахар", MeasurementUnit: "г"},
		{Name: "соль", MeasurementUnit: "г"},
		{Name: "масло сливочное", MeasurementUnit: "г"},
		{Name: "картофель", MeasurementUnit: "г"},
		{Name: "лук репчатый", MeasurementUnit: "шт."},
		{Name: "говядина", MeasurementUnit: "г"},
	}
	for i := range ingredients {
		db.Create(&ingredients[i])
	}

	// ================== RECIPES ==================
	log.Println("Creating recipes...")
	type seedAmount struct {
		ingredient int // index in ingredients
		amount     int
	}
	seedRecipes := []struct {
		author      int // index in users
		name        string
		text        string
		cookingTime int
		tags        []int // indexes in tags
		amounts     []seedAmount
	}{
		{
			author:      0,
			name:        "Блины на молоке",
			text:        "Смешать муку, яйца и молоко, жарить на раскалённой сковороде.",
			cookingTime: 30,
			tags:        []int{0},
			amounts:     []seedAmount{{0, 200}, {1, 2}, {2, 500}, {3, 30}},
		},
		{
			author:      1,
			name:        "Бешбармак",
			text:        "Отварить мясо, раскатать тесто, подавать с луком.",
			cookingTime: 120,
			tags:        []int{1, 2},
			amounts:     []seedAmount{{8, 800}, {0, 400}, {7, 2}, {4, 10}},
		},
		{
			author:      2,
			name:        "Картофельное пюре",
			text:        "Отварить картофель, растолочь с маслом и молоком.",
			cookingTime: 40,
			tags:        []int{2},
			amounts:     []seedAmount{{6, 600}, {5, 50}, {2, 150}, {4, 5}},
		},
	}
	recipes := make([]domain.Recipe, 0, len(seedRecipes))
	for i, sr := range seedRecipes {
		rec := domain.Recipe{
			AuthorID:    users[sr.author].ID,
			Name:        sr.name,
			Text:        sr.text,
			CookingTime: sr.cookingTime,
			Image:       fmt.Sprintf("/media/recipes/seed%d.jpg", i+1),
		}
		db.Create(&rec)
		for _, ti := range sr.tags {
			db.Model(&rec).Association("Tags").Append(&tags[ti])
		}
		for _, a := range sr.amounts {
			db.Create(&domain.IngredientAmount{
				RecipeID:     rec.ID,
				IngredientID: ingredients[a.ingredient].ID,
				Amount:       a.amount,
			})
		}
		recipes = append(recipes, rec)
	}

	// ================== RELATIONS ==================
	log.Println("Creating subscriptions, favorites and carts...")
	db.Create(&domain.Subscription{UserID: users[0].ID, AuthorID: users[1].ID})
	db.Create(&domain.Subscription{UserID: users[2].ID, AuthorID: users[0].ID})

	db.Create(&domain.Favorite{UserID: users[0].ID, RecipeID: recipes[1].ID})
	db.Create(&domain.Favorite{UserID: users[1].ID, RecipeID: recipes[0].ID})

	db.Create(&domain.ShoppingCart{UserID: users[0].ID, RecipeID: recipes[0].ID})
	db.Create(&domain.ShoppingCart{UserID: users[0].ID, RecipeID: recipes[2].ID})

	log.Println("Seed completed!")
	log.Println("Test accounts (password foodgram123):")
	for _, u := range users {
		log.Printf("  %s / %s", u.Email, u.Username)
	}
}
