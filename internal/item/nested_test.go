package item

import (
	"testing"
)

func TestParseNestedList(t *testing.T) {
	if got := ParseNestedList(nil); got != nil {
		t.Fatalf("nil: %v", got)
	}

	got := ParseNestedList(map[string]any{"id": " abc ", "body": "hi"})
	if len(got) != 1 {
		t.Fatalf("single map: %v", got)
	}
	if got[0].ID != "abc" {
		t.Fatalf("id not trimmed: %q", got[0].ID)
	}
	if got[0].Attrs["body"] != "hi" {
		t.Fatalf("attrs: %v", got[0].Attrs)
	}
	if _, ok := got[0].Attrs["id"]; ok {
		t.Fatalf("reserved key leaked into attrs")
	}

	got = ParseNestedList([]any{
		map[string]any{"body": "first"},
		"noise",
		map[string]any{"body": "second", "position": float64(3)},
	})
	if len(got) != 2 {
		t.Fatalf("mixed list: %v", got)
	}
	if got[1].Position == nil || *got[1].Position != 3 {
		t.Fatalf("position: %v", got[1].Position)
	}

	if got := ParseNestedList("garbage"); got != nil {
		t.Fatalf("scalar: %v", got)
	}
}

func TestDestroyFlag(t *testing.T) {
	truthy := []any{true, "1", "true", "TRUE"}
	for _, v := range truthy {
		got := ParseNestedList(map[string]any{"id": "x", "_destroy": v})
		if len(got) != 1 || !got[0].Destroy {
			t.Fatalf("destroy marker %v not recognized", v)
		}
	}
	falsy := []any{false, "0", "yes", nil, 1}
	for _, v := range falsy {
		got := ParseNestedList(map[string]any{"id": "x", "_destroy": v})
		if len(got) != 1 || got[0].Destroy {
			t.Fatalf("marker %v should not destroy", v)
		}
	}
}
