package store

import "canteen-system/internal/domain"

// SchemaVersion is stamped on every document that passes through Migrate.
const SchemaVersion = 3

const (
	DefaultStaffPin     = "1234"
	DefaultAdminMobile  = "9876543210"
	DefaultUPIID        = "bansalcanteen@upi"
	DefaultMerchantName = "Bansal Canteen"
)

func starterCatalog() []domain.MenuItem {
	return []domain.MenuItem{
		{
			ID: "m1", Name: "Maggi", Description: "Hot & spicy masala maggi noodles.",
			BasePrice: 50, Category: "Snacks",
			Image: "https://images.unsplash.com/photo-1612929633738-8fe44f7ec841?w=500&auto=format&fit=crop&q=60",
		},
		{
			ID: "m2", Name: "Chole Bhature", Description: "Fluffy bhature with spicy chole masala.",
			BasePrice: 60, Category: "Meals",
			Image: "https://lh5.googleusercontent.com/proxy/MRM9rtKGvv9Nsc5CLx4soi5Qh8ojzjw25zmYUjWMHv8dKnV6bRt6w2RJIpRKappin9EP5zCh-bhLSFhjNUmsqXEeC4igJ_Glf5glffRRtG4UAso2Hw",
		},
		{
			ID: "m3", Name: "Aalu Paratha", Description: "Stuffed potato paratha with pickle & curd.",
			BasePrice: 30, Category: "Meals",
			Image: "https://www.vegrecipesofindia.com/wp-content/uploads/2009/08/aloo-paratha-recipe-2.jpg",
		},
		{
			ID: "m4", Name: "Samosa", Description: "Crispy golden pastry with spicy potato filling.",
			BasePrice: 12, Category: "Snacks",
			Image: "https://images.unsplash.com/photo-1601050690597-df0568f70950?w=500&auto=format&fit=crop&q=60",
		},
		{
			ID: "m5", Name: "Back Samosa", Description: "Special canteen version crispy samosa.",
			BasePrice: 25, Category: "Snacks",
			Image: "https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcRD9vtIwbFFlhDiHONHvirQ5KnXQUr7BrUypA&s",
		},
		{
			ID: "m6", Name: "Poha", Description: "Light flattened rice with peanuts and coriander.",
			BasePrice: 10, Category: "Breakfast",
			Image: "https://www.sharmispassions.com/wp-content/uploads/2022/01/PohaRecipe5-500x500.jpg",
		},
	}
}

func starterStock() map[string]domain.DailyStock {
	return map[string]domain.DailyStock{
		"m1": {ItemID: "m1", Available: true, StockQty: 50, TrackStock: true},
		"m2": {ItemID: "m2", Available: true, StockQty: 30, TrackStock: true},
		"m3": {ItemID: "m3", Available: true, StockQty: 100, TrackStock: false},
		"m4": {ItemID: "m4", Available: true, StockQty: 100, TrackStock: true},
		"m5": {ItemID: "m5", Available: true, StockQty: 20, TrackStock: true},
		"m6": {ItemID: "m6", Available: true, StockQty: 80, TrackStock: true},
	}
}

// MissingStock is the record synthesized for an item that has none.
func MissingStock(itemID string) domain.DailyStock {
	return domain.DailyStock{ItemID: itemID, Available: true, StockQty: 0, TrackStock: true}
}

// Default builds a fresh document with the starter menu.
func Default() domain.Document {
	return domain.Document{
		SchemaVersion: SchemaVersion,
		Catalog:       starterCatalog(),
		Stock:         starterStock(),
		Orders:        []domain.Order{},
		Cart:          []domain.CartItem{},
		StaffPin:      DefaultStaffPin,
		AdminMobile:   DefaultAdminMobile,
		PaymentConfig: domain.PaymentConfig{UPIID: DefaultUPIID, MerchantName: DefaultMerchantName},
	}
}

// Migrate back-fills whatever a decoded document is missing. Absent
// top-level fields take their default; catalog items without a stock record
// get one; the cart is normalized. It reports whether anything changed.
func Migrate(doc *domain.Document) bool {
	changed := false
	if doc.Catalog == nil {
		doc.Catalog = starterCatalog()
		changed = true
	}
	if doc.Stock == nil {
		doc.Stock = starterStock()
		changed = true
	}
	for _, item := range doc.Catalog {
		if _, ok := doc.Stock[item.ID]; !ok {
			doc.Stock[item.ID] = MissingStock(item.ID)
			changed = true
		}
	}
	for id, s := range doc.Stock {
		if s.ItemID == "" || s.StockQty < 0 {
			s.ItemID = id
			s.StockQty = max(s.StockQty, 0)
			doc.Stock[id] = s
			changed = true
		}
	}
	if doc.Orders == nil {
		doc.Orders = []domain.Order{}
		changed = true
	}
	if doc.Cart == nil {
		doc.Cart = []domain.CartItem{}
		changed = true
	} else if norm := domain.NormalizeCart(doc.Cart); len(norm) != len(doc.Cart) {
		doc.Cart = norm
		changed = true
	}
	if doc.StaffPin == "" {
		doc.StaffPin = DefaultStaffPin
		changed = true
	}
	if doc.AdminMobile == "" {
		doc.AdminMobile = DefaultAdminMobile
		changed = true
	}
	if doc.PaymentConfig.IsZero() {
		doc.PaymentConfig = domain.PaymentConfig{UPIID: DefaultUPIID, MerchantName: DefaultMerchantName}
		changed = true
	}
	if doc.SchemaVersion != SchemaVersion {
		doc.SchemaVersion = SchemaVersion
		changed = true
	}
	return changed
}
