package services_test

import (
	"context"
	"testing"

	"loudlimit/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithAsset(ctx, "/music/song.mp3")
	ctx = services.WithStage(ctx, "encoding")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if asset, ok := services.AssetFromContext(ctx); !ok || asset != "/music/song.mp3" {
		t.Fatalf("unexpected asset: %v %v", asset, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "encoding" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithAsset(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.AssetFromContext(ctx); ok {
		t.Fatal("expected no asset value")
	}
}
