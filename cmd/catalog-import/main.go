// catalog-import loads product records from a JSON file into the catalog
// database. The input is an array of product objects matching the catalog
// schema.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/meatwise/assessment-engine/internal/products"
)

func main() {
	var (
		productDB = flag.String("product-db", "./data/products.db", "Path to the product catalog SQLite file")
		input     = flag.String("input", "", "Path to a JSON file with an array of products")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input is required")
	}

	blob, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var items []products.Product
	if err := json.Unmarshal(blob, &items); err != nil {
		log.Fatalf("decode input: %v", err)
	}

	catalog, err := products.NewSQLiteCatalog(*productDB)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer catalog.Close()

	ctx := context.Background()
	imported := 0
	for _, p := range items {
		if p.Code == "" {
			log.Printf("skipping record without code (name=%q)", p.Name)
			continue
		}
		if err := catalog.Upsert(ctx, p); err != nil {
			log.Fatalf("upsert %s: %v", p.Code, err)
		}
		imported++
	}
	log.Printf("imported %d of %d products into %s", imported, len(items), *productDB)
}
