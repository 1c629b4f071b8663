package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"canteen-system/internal/common/config"
	"canteen-system/internal/common/logger"
)

func TestBuildLocalFile(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "canteen.json")
	ctx := context.Background()

	rt, err := Build(ctx, cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer rt.Close()

	if err := rt.Repo.SetStaffPin(ctx, "2468"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	if got := rt.Store.Load(ctx).StaffPin; got != "2468" {
		t.Fatalf("expected pin persisted to file, got %q", got)
	}
}

func TestBuildRejectsUnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Driver = "memory"
	cfg.Notify.Driver = "carrier-pigeon"
	if _, err := Build(context.Background(), cfg, logger.NewNop()); err == nil {
		t.Fatalf("expected an error for an unknown notify driver")
	}
}
