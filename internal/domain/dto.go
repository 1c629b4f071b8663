package domain

// StockUpdate is a partial DailyStock; nil fields are left unchanged.
type StockUpdate struct {
	Available  *bool `json:"available,omitempty"`
	StockQty   *int  `json:"stockQty,omitempty"`
	TrackStock *bool `json:"trackStock,omitempty"`
}

func (u StockUpdate) Apply(s DailyStock) DailyStock {
	if u.Available != nil {
		s.Available = *u.Available
	}
	if u.StockQty != nil {
		s.StockQty = max(*u.StockQty, 0)
	}
	if u.TrackStock != nil {
		s.TrackStock = *u.TrackStock
	}
	return s
}

type PlaceOrderInput struct {
	Items       []CartItem
	Total       float64
	Mode        PaymentMode
	StudentName string
}

type NewMenuItem struct {
	Name     string
	Price    float64
	Image    string
	Category string
}
