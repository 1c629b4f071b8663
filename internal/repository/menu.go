package repository

import (
	"context"
	"fmt"
	"strings"

	"canteen-system/internal/domain"
	"canteen-system/internal/store"
)

const (
	DefaultDescription = "Newly added item."
	DefaultImage       = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=500&auto=format&fit=crop&q=60"

	// starting quantities for items created by UpsertMenuItem and AddMenuItem
	upsertStockQty = 20
	addedStockQty  = 50
)

// SetStock merges upd into the item's stock record, creating the record
// first if the item has none.
func (c *Canteen) SetStock(ctx context.Context, itemID string, upd domain.StockUpdate) (domain.DailyStock, error) {
	var out domain.DailyStock
	_, err := c.mutate(ctx, "set_stock", func(doc *domain.Document) (bool, error) {
		cur, ok := doc.Stock[itemID]
		if !ok {
			cur = store.MissingStock(itemID)
			c.lg.Debug("stock_synthesized", map[string]any{"item_id": itemID})
		}
		out = upd.Apply(cur)
		doc.Stock[itemID] = out
		return true, nil
	})
	return out, err
}

// UpsertMenuItem replaces the catalog entry with the same id, or appends the
// item together with a fresh stock record.
func (c *Canteen) UpsertMenuItem(ctx context.Context, item domain.MenuItem) error {
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("%w: menu item id is required", domain.ErrInvalidInput)
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePrice(item.BasePrice); err != nil {
		return err
	}
	_, err := c.mutate(ctx, "upsert_menu_item", func(doc *domain.Document) (bool, error) {
		for i := range doc.Catalog {
			if doc.Catalog[i].ID == item.ID {
				doc.Catalog[i] = item
				return true, nil
			}
		}
		appendItem(doc, item, upsertStockQty)
		return true, nil
	})
	return err
}

// AddMenuItem creates a catalog entry with a generated id, the default
// description and a starting stock of 50.
func (c *Canteen) AddMenuItem(ctx context.Context, in domain.NewMenuItem) (domain.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.MenuItem{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePrice(in.Price); err != nil {
		return domain.MenuItem{}, err
	}
	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = DefaultImage
	}
	item := domain.MenuItem{
		ID:          c.newID("m"),
		Name:        name,
		Description: DefaultDescription,
		BasePrice:   in.Price,
		Image:       image,
		Category:    strings.TrimSpace(in.Category),
	}
	_, err := c.mutate(ctx, "add_menu_item", func(doc *domain.Document) (bool, error) {
		appendItem(doc, item, addedStockQty)
		return true, nil
	})
	if err != nil {
		return domain.MenuItem{}, err
	}
	c.lg.Info("menu_item_added", map[string]any{"item_id": item.ID, "name": item.Name, "price": item.BasePrice})
	return item, nil
}

func appendItem(doc *domain.Document, item domain.MenuItem, qty int) {
	doc.Catalog = append(doc.Catalog, item)
	doc.Stock[item.ID] = domain.DailyStock{ItemID: item.ID, Available: true, StockQty: qty, TrackStock: true}
}
