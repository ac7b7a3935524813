package item

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestFieldAccessors(t *testing.T) {
	it := newContact(t)

	if err := it.Set("first_name", "Ada"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if it.payload["first_name"] != "Ada" {
		t.Fatalf("payload: %v", it.payload)
	}
	got, err := it.Get(context.Background(), "first_name")
	if err != nil || got != "Ada" {
		t.Fatalf("Get: %v %v", got, err)
	}

	if _, err := it.Get(context.Background(), "no_such_field"); !errors.Is(err, ErrNoAttribute) {
		t.Fatalf("unknown getter: %v", err)
	}
	if err := it.Set("no_such_field", 1); !errors.Is(err, ErrNoAttribute) {
		t.Fatalf("unknown setter: %v", err)
	}
}

func TestSetAttributesFallsThroughToPayload(t *testing.T) {
	it := newContact(t)
	err := it.SetAttributes(map[string]any{
		"first_name": "Ada",
		"nickname":   "countess",
	})
	if err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}
	if it.payload["first_name"] != "Ada" || it.payload["nickname"] != "countess" {
		t.Fatalf("payload: %v", it.payload)
	}
}

func TestLinkAccessorsStage(t *testing.T) {
	it := newContact(t)
	companyID := uuid.New()
	noteA, noteB := uuid.New(), uuid.New()

	if err := it.Set("company_id", companyID.String()); err != nil {
		t.Fatalf("Set company_id: %v", err)
	}
	if err := it.Set("note_ids", []any{noteA.String(), noteB, "garbage"}); err != nil {
		t.Fatalf("Set note_ids: %v", err)
	}

	// Reads see staged state before any save.
	got, err := it.Get(context.Background(), "company_id")
	if err != nil {
		t.Fatalf("Get company_id: %v", err)
	}
	id, ok := got.(*uuid.UUID)
	if !ok || id == nil || *id != companyID {
		t.Fatalf("company_id staged read: %v", got)
	}

	got, err = it.Get(context.Background(), "note_ids")
	if err != nil {
		t.Fatalf("Get note_ids: %v", err)
	}
	ids := got.([]uuid.UUID)
	if len(ids) != 2 || ids[0] != noteA || ids[1] != noteB {
		t.Fatalf("note_ids staged read: %v", ids)
	}

	// Unlink stages an empty set, not a missing relation.
	if err := it.Set("company_id", nil); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	got, err = it.Get(context.Background(), "company_id")
	if err != nil || got.(*uuid.UUID) != nil {
		t.Fatalf("after unlink: %v %v", got, err)
	}
}

func TestLinkReadsBeforePersist(t *testing.T) {
	it := newContact(t)
	got, err := it.Get(context.Background(), "note_ids")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ids := got.([]uuid.UUID); len(ids) != 0 {
		t.Fatalf("unpersisted item should have no links: %v", ids)
	}
}

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"notes":     "note",
		"companies": "company",
		"addresses": "address",
		"statuses":  "status",
		"class":     "class",
		"company":   "company",
	}
	for in, want := range cases {
		if got := singularize(in); got != want {
			t.Fatalf("singularize(%q) = %q, want %q", in, got, want)
		}
	}
}
