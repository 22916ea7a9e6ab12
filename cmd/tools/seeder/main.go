package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedSettings(db)
	seedCatalog(db)

	log.Println("Seeding completed successfully!")
}

func seedSettings(db *sql.DB) {
	fmt.Println("Seeding Settings...")
	// 10% service charge, 15% tax; only inserted when the row is missing.
	_, err := db.Exec(`
		INSERT INTO settings (id, service_bps, tax_bps)
		VALUES (1, 1000, 1500)
		ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		log.Printf("Failed to seed settings: %v", err)
	}
}

func seedCatalog(db *sql.DB) {
	// 1. Categories
	categories := []string{
		"Hot Drinks",
		"Cold Drinks",
		"Pastries",
		"Sandwiches",
		"Desserts",
	}

	fmt.Println("Seeding Categories...")
	catIDs := make(map[string]string)
	for _, name := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (id, name)
			VALUES (gen_random_uuid(), $1)
			ON CONFLICT (name) DO NOTHING;
		`, name)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", name, err)
		}

		var id string
		if err := db.QueryRow("SELECT id FROM categories WHERE name = $1", name).Scan(&id); err != nil {
			log.Printf("Failed to get ID for category %s: %v", name, err)
			continue
		}
		catIDs[name] = id
	}

	// 2. Products, prices in minor units
	products := []struct {
		Name     string
		Category string
		Price    int64
	}{
		{"Espresso", "Hot Drinks", 2000},
		{"Double Espresso", "Hot Drinks", 2800},
		{"Cappuccino", "Hot Drinks", 3000},
		{"Latte", "Hot Drinks", 3200},
		{"Turkish Coffee", "Hot Drinks", 2500},
		{"Black Tea", "Hot Drinks", 1500},
		{"Iced Latte", "Cold Drinks", 3500},
		{"Iced Americano", "Cold Drinks", 3000},
		{"Fresh Orange Juice", "Cold Drinks", 4000},
		{"Lemonade", "Cold Drinks", 2500},
		{"Croissant", "Pastries", 2200},
		{"Pain au Chocolat", "Pastries", 2600},
		{"Cinnamon Roll", "Pastries", 2800},
		{"Halloumi Sandwich", "Sandwiches", 4500},
		{"Turkey Sandwich", "Sandwiches", 5000},
		{"Cheesecake Slice", "Desserts", 3800},
		{"Brownie", "Desserts", 3000},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		catID, ok := catIDs[p.Category]
		if !ok {
			log.Printf("Missing category ID for %s", p.Category)
			continue
		}

		var exists bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)", p.Name).Scan(&exists); err != nil {
			log.Printf("Failed to check product %s: %v", p.Name, err)
			continue
		}
		if exists {
			_, err := db.Exec(`
				UPDATE products SET price = $2, category_id = $3, updated_at = now()
				WHERE name = $1;
			`, p.Name, p.Price, catID)
			if err != nil {
				log.Printf("Failed to update product %s: %v", p.Name, err)
			}
			continue
		}

		_, err := db.Exec(`
			INSERT INTO products (id, name, price, category_id)
			VALUES (gen_random_uuid(), $1, $2, $3);
		`, p.Name, p.Price, catID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}
