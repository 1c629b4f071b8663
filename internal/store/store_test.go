package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"canteen-system/internal/domain"
)

func assertDefault(t *testing.T, doc domain.Document) {
	t.Helper()
	if len(doc.Orders) != 0 || len(doc.Cart) != 0 {
		t.Fatalf("expected empty orders and cart, got %d orders, %d cart lines", len(doc.Orders), len(doc.Cart))
	}
	if len(doc.Catalog) != 6 {
		t.Fatalf("expected 6 starter items, got %d", len(doc.Catalog))
	}
	for i, want := range []string{"m1", "m2", "m3", "m4", "m5", "m6"} {
		if doc.Catalog[i].ID != want {
			t.Fatalf("catalog[%d]: expected %s, got %s", i, want, doc.Catalog[i].ID)
		}
		if _, ok := doc.Stock[want]; !ok {
			t.Fatalf("missing stock record for %s", want)
		}
	}
	if doc.StaffPin != DefaultStaffPin || doc.AdminMobile != DefaultAdminMobile {
		t.Fatalf("unexpected credentials %q / %q", doc.StaffPin, doc.AdminMobile)
	}
	if doc.PaymentConfig.UPIID != DefaultUPIID {
		t.Fatalf("unexpected payment config %+v", doc.PaymentConfig)
	}
}

func TestLoadSeedsMissingDocument(t *testing.T) {
	b := NewMemoryBackend()
	a := New(b, nil)

	doc := a.Load(context.Background())
	assertDefault(t, doc)
	if b.Bytes() == nil {
		t.Fatalf("expected the seeded document to be persisted")
	}
}

func TestLoadResetsCorruptDocument(t *testing.T) {
	b := NewMemoryBackend()
	b.Set([]byte(`{"catalog": [ this is not json`))
	a := New(b, nil)

	doc := a.Load(context.Background())
	assertDefault(t, doc)

	var persisted domain.Document
	if err := json.Unmarshal(b.Bytes(), &persisted); err != nil {
		t.Fatalf("expected corrupt bytes to be overwritten with a valid document: %v", err)
	}
}

func TestLoadTypeMismatchIsCorrupt(t *testing.T) {
	b := NewMemoryBackend()
	b.Set([]byte(`{"orders": "yesterday"}`))
	assertDefault(t, New(b, nil).Load(context.Background()))
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	b := NewMemoryBackend()
	b.Set([]byte(`{
		"catalog": [{"id":"x1","name":"Tea","basePrice":8,"image":"","category":"Drinks"}],
		"orders": [{"id":"ord_1","tokenNumber":101,"items":[],"totalAmount":0,"paymentMode":"ONLINE","status":"COMPLETED","createdAt":1}]
	}`))
	doc := New(b, nil).Load(context.Background())

	if len(doc.Catalog) != 1 || doc.Catalog[0].ID != "x1" {
		t.Fatalf("expected stored catalog to be kept, got %+v", doc.Catalog)
	}
	if len(doc.Orders) != 1 {
		t.Fatalf("expected stored orders to be kept, got %d", len(doc.Orders))
	}
	if doc.Cart == nil || len(doc.Cart) != 0 {
		t.Fatalf("expected empty non-nil cart, got %#v", doc.Cart)
	}
	if s, ok := doc.Stock["x1"]; !ok || !s.Available || !s.TrackStock || s.StockQty != 0 {
		t.Fatalf("expected synthesized stock for x1, got %+v ok=%v", s, ok)
	}
	if doc.StaffPin != DefaultStaffPin || doc.PaymentConfig.MerchantName != DefaultMerchantName {
		t.Fatalf("expected defaults for missing settings, got pin=%q payment=%+v", doc.StaffPin, doc.PaymentConfig)
	}
	if doc.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, doc.SchemaVersion)
	}
}

func TestLoadStorageUnavailableReturnsDefaults(t *testing.T) {
	b := NewMemoryBackend()
	b.Set([]byte(`{"staffPin":"9999"}`))
	b.FailWith(errors.New("disk on fire"))

	doc := New(b, nil).Load(context.Background())
	assertDefault(t, doc)

	b.FailWith(nil)
	if !strings.Contains(string(b.Bytes()), "9999") {
		t.Fatalf("unreadable storage must not be overwritten")
	}
}

func TestSaveWrapsStorageErrors(t *testing.T) {
	b := NewMemoryBackend()
	b.FailWith(errors.New("read-only"))
	err := New(b, nil).Save(context.Background(), Default())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	a := New(NewMemoryBackend(), nil)
	ctx := context.Background()
	doc := a.Load(ctx)
	doc.StaffPin = "4321"
	doc.Orders = append(doc.Orders, domain.Order{ID: "ord_a", TokenNumber: 101, Status: domain.StatusReady})
	if err := a.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := a.Load(ctx)
	if got.StaffPin != "4321" || len(got.Orders) != 1 || got.Orders[0].Status != domain.StatusReady {
		t.Fatalf("unexpected document after round trip: pin=%q orders=%+v", got.StaffPin, got.Orders)
	}
}

func TestFileBackendQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "canteen.json")
	fb, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	if err := os.WriteFile(path, []byte("<<garbage>>"), 0o644); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	doc := New(fb, nil).Load(context.Background())
	assertDefault(t, doc)

	matches, _ := filepath.Glob(path + ".corrupt.*")
	if len(matches) != 1 {
		t.Fatalf("expected one quarantine file, got %v", matches)
	}
	kept, _ := os.ReadFile(matches[0])
	if string(kept) != "<<garbage>>" {
		t.Fatalf("quarantine file should hold the original bytes, got %q", kept)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be renamed away, stat err=%v", err)
	}
}

func TestFileBackendEmptyFileIsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canteen.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	fb, _ := NewFileBackend(path)
	if _, err := fb.Read(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty file, got %v", err)
	}
}

func TestMigrateNormalizesCartAndStock(t *testing.T) {
	doc := Default()
	doc.Cart = []domain.CartItem{
		{MenuItem: domain.MenuItem{ID: "m1"}, Qty: 1},
		{MenuItem: domain.MenuItem{ID: "m1"}, Qty: 2},
		{MenuItem: domain.MenuItem{ID: "m2"}, Qty: 0},
	}
	doc.Stock["m4"] = domain.DailyStock{Available: true, StockQty: -3, TrackStock: true}

	if !Migrate(&doc) {
		t.Fatalf("expected Migrate to report changes")
	}
	if len(doc.Cart) != 1 || doc.Cart[0].Qty != 3 {
		t.Fatalf("expected a single m1 x3 line, got %+v", doc.Cart)
	}
	if s := doc.Stock["m4"]; s.ItemID != "m4" || s.StockQty != 0 {
		t.Fatalf("expected repaired m4 stock, got %+v", s)
	}
	if Migrate(&doc) {
		t.Fatalf("second Migrate should be a no-op")
	}
}
