package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shinyyama/home-inventory/internal/config"
	"github.com/shinyyama/home-inventory/internal/model"
	"github.com/shinyyama/home-inventory/internal/repository"
	"github.com/shinyyama/home-inventory/internal/server"
	"github.com/shinyyama/home-inventory/internal/service"
)

type seedItem struct {
	Name      string
	Brand     string
	Model     string
	Condition model.Condition
	Category  model.Category
	Room      model.Room
	Bought    string
	Store     string
	Price     string
	Warranty  string
	Tint      color.RGBA
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	repo, closeRepo, err := server.OpenRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	canSeed, err := shouldSeed(ctx, repo)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("items already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	store, err := server.OpenStorage(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewItemService(repo, store.Gateway, service.Options{
		MaxAttachments:    cfg.MaxAttachments,
		UploadConcurrency: cfg.UploadConcurrency,
	})

	items := buildSeedItems()
	for _, it := range items {
		img, err := placeholderPNG(it.Tint)
		if err != nil {
			return err
		}
		upload := service.UploadFromBytes(slug(it.Name)+".png", "image/png", img)
		created, err := svc.Create(ctx, service.CreateItemRequest{
			Fields: it.input(),
			Image:  &upload,
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", it.Name, err)
		}
		log.Printf("seeded %s (%s)", created.Name, created.ID)
	}
	log.Printf("seeded %d items", len(items))
	return nil
}

func (s seedItem) input() model.ItemInput {
	var in model.ItemInput
	in.Set("name", s.Name)
	in.Set("brand", s.Brand)
	in.Set("model", s.Model)
	in.Set("condition", string(s.Condition))
	in.Set("category", string(s.Category))
	in.Set("room", string(s.Room))
	in.Set("purchaseDate", s.Bought)
	in.Set("purchaseLocation", s.Store)
	in.Set("price", s.Price)
	if s.Warranty != "" {
		in.Set("warranty", s.Warranty)
	}
	return in
}

func buildSeedItems() []seedItem {
	return []seedItem{
		{Name: "OLED TV 55\"", Brand: "LG", Model: "OLED55C3", Condition: model.ConditionExcellent, Category: model.CategoryElectronics, Room: model.RoomLiving, Bought: "2023-11-24", Store: "Best Buy", Price: "1299.99", Warranty: "2026-11-24", Tint: color.RGBA{40, 40, 60, 255}},
		{Name: "Stand Mixer", Brand: "KitchenAid", Model: "KSM150", Condition: model.ConditionGood, Category: model.CategoryAppliances, Room: model.RoomKitchen, Bought: "2021-05-02", Store: "Target", Price: "379.00", Tint: color.RGBA{200, 30, 40, 255}},
		{Name: "Oak Dining Table", Brand: "West Elm", Model: "Mid-Century 72", Condition: model.ConditionGood, Category: model.CategoryFurniture, Room: model.RoomDining, Bought: "2020-08-15", Store: "West Elm", Price: "1099.00", Tint: color.RGBA{150, 110, 70, 255}},
		{Name: "Signed Lithograph", Brand: "Unknown", Model: "1/150", Condition: model.ConditionExcellent, Category: model.CategoryCollectibles, Room: model.RoomBedroom, Bought: "2019-03-10", Store: "Estate sale", Price: "850.00", Tint: color.RGBA{220, 200, 160, 255}},
		{Name: "Wedding Ring", Brand: "Tiffany & Co.", Model: "Classic Band", Condition: model.ConditionExcellent, Category: model.CategoryJewelry, Room: model.RoomBedroom, Bought: "2018-06-01", Store: "Tiffany & Co.", Price: "2400.00", Tint: color.RGBA{230, 200, 80, 255}},
		{Name: "Cordless Drill", Brand: "DeWalt", Model: "DCD771C2", Condition: model.ConditionFair, Category: model.CategoryMiscellaneous, Room: model.RoomGarage, Bought: "2017-09-30", Store: "Home Depot", Price: "99.00", Tint: color.RGBA{240, 190, 20, 255}},
	}
}

// placeholderPNG draws a small solid swatch so every seeded item has an image.
func placeholderPNG(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func shouldSeed(ctx context.Context, repo repository.ItemRepository) (bool, error) {
	cnt, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count items: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	force := os.Getenv("FORCE_SEED")
	return strings.EqualFold(force, "true"), nil
}
