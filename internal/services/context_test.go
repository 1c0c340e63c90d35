package services_test

import (
	"context"
	"testing"

	"marquee/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithShowID(ctx, "hamilton-2015")
	ctx = services.WithStage(ctx, "resolve")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if show, ok := services.ShowIDFromContext(ctx); !ok || show != "hamilton-2015" {
		t.Fatalf("unexpected show id: %v %v", show, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "resolve" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithShowID(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ShowIDFromContext(ctx); ok {
		t.Fatal("expected no show value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run value")
	}
}
