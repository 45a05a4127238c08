package models

import (
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestProductSyncDescriptionPrefersLongForm(t *testing.T) {
	p := Product{Description: strPtr("  full text "), ShortDescription: strPtr("short")}
	if got := p.SyncDescription(); got != "full text" {
		t.Fatalf("unexpected description %q", got)
	}
	p.Description = strPtr("   ")
	if got := p.SyncDescription(); got != "short" {
		t.Fatalf("expected short description fallback, got %q", got)
	}
	if got := (Product{}).SyncDescription(); got != "" {
		t.Fatalf("expected empty description, got %q", got)
	}
}

func TestProductBeforeCreateAssignsID(t *testing.T) {
	p := &Product{}
	if err := p.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}
	existing := uuid.New()
	p = &Product{ID: existing}
	_ = p.BeforeCreate(nil)
	if p.ID != existing {
		t.Fatalf("existing id must be preserved")
	}
}
