package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFavoriteSet_DoubleToggleRestores(t *testing.T) {
	for _, start := range []FavoriteSet{NewFavoriteSet(), NewFavoriteSet("a"), NewFavoriteSet("a", "b")} {
		before := start.Clone()
		for _, id := range []string{"a", "z"} {
			start.Toggle(id)
			start.Toggle(id)
			if !start.Equal(before) {
				t.Fatalf("double toggle of %q changed %v into %v", id, before.IDs(), start.IDs())
			}
		}
	}
}

func TestFavoriteSet_Toggle(t *testing.T) {
	s := NewFavoriteSet("", "b")
	if s.Len() != 1 {
		t.Fatalf("blank id should be ignored, got %v", s.IDs())
	}
	if !s.Toggle("a") || !s.Has("a") {
		t.Fatalf("expected a to become favorite")
	}
	if s.Toggle("a") || s.Has("a") {
		t.Fatalf("expected a to be removed")
	}
	if diff := cmp.Diff([]string{"b"}, s.IDs()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestFilterState_Clear(t *testing.T) {
	state := FilterState{Query: "abc", Category: "Revenue Reports", Favorites: NewFavoriteSet("a")}
	state.Clear()
	if state.Query != "" || state.Category != CategoryAll {
		t.Fatalf("unexpected state after clear: %+v", state)
	}
	if !state.Favorites.Equal(NewFavoriteSet("a")) {
		t.Fatalf("favorites touched by clear: %v", state.Favorites.IDs())
	}
	if state.IsFiltered() {
		t.Fatalf("cleared state must not be filtered")
	}
}

func TestFilterState_ToggleLeavesOtherFields(t *testing.T) {
	state := FilterState{Query: "q", Category: "X"}
	if !state.ToggleFavorite("a") {
		t.Fatalf("expected a to become favorite")
	}
	if state.Query != "q" || state.Category != "X" {
		t.Fatalf("toggle changed other fields: %+v", state)
	}
}

func TestFilterState_OperationsCommute(t *testing.T) {
	a := NewFilterState(nil)
	a.SetQuery("mrr")
	a.ToggleFavorite("x")
	a.SetCategory("Revenue Reports")

	b := NewFilterState(nil)
	b.SetCategory("Revenue Reports")
	b.ToggleFavorite("x")
	b.SetQuery("mrr")

	if a.Query != b.Query || a.Category != b.Category || !a.Favorites.Equal(b.Favorites) {
		t.Fatalf("states diverged: %+v vs %+v", a, b)
	}
}

func TestFilterState_SetCategoryBlankSelectsAll(t *testing.T) {
	state := NewFilterState(nil)
	state.SetCategory("X")
	state.SetCategory("  ")
	if state.Category != CategoryAll {
		t.Fatalf("Category = %q, want All", state.Category)
	}
}
