package networks

import (
	"strings"
	"testing"
)

func TestSuggest(t *testing.T) {
	got := Default().Suggest("plygon")
	if len(got) == 0 {
		t.Fatal("expected at least one suggestion for 'plygon'")
	}
	found := false
	for _, s := range got {
		if strings.EqualFold(s, "polygon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected polygon among suggestions, got %v", got)
	}
}

func TestSuggestNoMatch(t *testing.T) {
	if got := Default().Suggest("xqzw"); len(got) > 3 {
		t.Errorf("suggestions must be capped at 3, got %d", len(got))
	}
}
