package domain

import "slices"

type PaymentMode string

const (
	PaymentOnline   PaymentMode = "ONLINE"
	PaymentCashDesk PaymentMode = "CASH_DESK"
)

type OrderStatus string

const (
	StatusAwaitingCash OrderStatus = "AWAITING_CASH"
	StatusConfirmed    OrderStatus = "CONFIRMED"
	StatusPreparing    OrderStatus = "PREPARING"
	StatusReady        OrderStatus = "READY"
	StatusCompleted    OrderStatus = "COMPLETED"
	StatusCancelled    OrderStatus = "CANCELLED"
)

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	BasePrice   float64 `json:"basePrice"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// DailyStock is the per-item operational state for today. StockQty only
// matters when TrackStock is set and never drops below zero.
type DailyStock struct {
	ItemID     string `json:"itemId"`
	Available  bool   `json:"available"`
	StockQty   int    `json:"stockQty"`
	TrackStock bool   `json:"trackStock"`
}

// CartItem is a snapshot of a menu item plus a quantity of at least one.
type CartItem struct {
	MenuItem
	Qty int `json:"qty"`
}

type Order struct {
	ID          string      `json:"id"`
	TokenNumber int         `json:"tokenNumber"`
	Items       []CartItem  `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	PaymentMode PaymentMode `json:"paymentMode"`
	Status      OrderStatus `json:"status"`
	CreatedAt   int64       `json:"createdAt"` // unix millis
	StudentName string      `json:"studentName,omitempty"`
}

type PaymentConfig struct {
	UPIID        string `json:"upiId"`
	MerchantName string `json:"merchantName"`
}

func (p PaymentConfig) IsZero() bool { return p.UPIID == "" && p.MerchantName == "" }

// Document is the whole persisted state. It is always read and written as a
// unit.
type Document struct {
	SchemaVersion int                   `json:"schemaVersion"`
	Catalog       []MenuItem            `json:"catalog"`
	Stock         map[string]DailyStock `json:"stock"`
	Orders        []Order               `json:"orders"`
	Cart          []CartItem            `json:"cart"`
	StaffPin      string                `json:"staffPin"`
	AdminMobile   string                `json:"adminMobile"`
	PaymentConfig PaymentConfig         `json:"paymentConfig"`
}

func (d Document) Clone() Document {
	out := d
	out.Catalog = slices.Clone(d.Catalog)
	if d.Stock != nil {
		out.Stock = make(map[string]DailyStock, len(d.Stock))
		for k, v := range d.Stock {
			out.Stock[k] = v
		}
	}
	if d.Orders != nil {
		out.Orders = make([]Order, len(d.Orders))
		for i, o := range d.Orders {
			o.Items = slices.Clone(o.Items)
			out.Orders[i] = o
		}
	}
	out.Cart = slices.Clone(d.Cart)
	return out
}

func (d Document) FindMenuItem(id string) (MenuItem, bool) {
	for _, m := range d.Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return MenuItem{}, false
}

func (d Document) OrderIndex(id string) int {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

// NormalizeCart drops lines with qty < 1 and folds repeated ids into the
// first occurrence.
func NormalizeCart(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if it.Qty < 1 {
			continue
		}
		if i, ok := pos[it.ID]; ok {
			out[i].Qty += it.Qty
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
