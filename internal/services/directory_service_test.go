package services

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"subboard/internal/catalog"
	"subboard/internal/metrics/memory"
)

func groupIDs(groups []catalog.Group) map[string][]string {
	out := map[string][]string{}
	for _, g := range groups {
		for _, r := range g.Reports {
			out[g.Category] = append(out[g.Category], r.ID)
		}
	}
	return out
}

func TestDirectoryService_Directory(t *testing.T) {
	favs := NewFavoritesService(memory.New(nil), testCatalog(t), nil, nil)
	s := NewDirectoryService(testCatalog(t), favs, nil)
	ctx := context.Background()

	v, err := s.Directory(ctx, "s1", "", "")
	require.NoError(t, err)
	require.Equal(t, 3, v.Total)
	require.Equal(t, 3, v.Visible)
	require.False(t, v.Empty)
	require.Equal(t, catalog.CategoryAll, v.State.Category)
	require.Equal(t, []string{"Revenue", "Retention", "Acquisition"}, v.Categories)

	v, err = s.Directory(ctx, "s1", "chu", "")
	require.NoError(t, err)
	if diff := cmp.Diff(map[string][]string{"Retention": {"churn"}}, groupIDs(v.Groups)); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, v.Counts.Get(catalog.CategoryAll), "counts ignore the query")

	v, err = s.Directory(ctx, "s1", "", "Bogus")
	require.NoError(t, err)
	require.Equal(t, catalog.CategoryAll, v.State.Category)

	v, err = s.Directory(ctx, "s1", "", catalog.CategoryFavorites)
	require.NoError(t, err)
	require.True(t, v.Empty)
	require.Empty(t, v.Groups)

	_, err = favs.Toggle(ctx, "s1", "cac")
	require.NoError(t, err)
	v, err = s.Directory(ctx, "s1", "", catalog.CategoryFavorites)
	require.NoError(t, err)
	require.Equal(t, 1, v.Visible)
	require.True(t, v.IsFavorite("cac"))
	require.Equal(t, 1, v.Counts.Get(catalog.CategoryFavorites))

	v, err = s.Directory(ctx, "s1", "zzz", "Revenue")
	require.NoError(t, err)
	require.True(t, v.Empty)
	require.True(t, v.State.IsFiltered())
}

func TestDirectoryService_Cleared(t *testing.T) {
	favs := NewFavoritesService(memory.New(nil), testCatalog(t), nil, nil)
	s := NewDirectoryService(testCatalog(t), favs, nil)
	ctx := context.Background()
	_, err := favs.Toggle(ctx, "s1", "mrr")
	require.NoError(t, err)

	v, err := s.Cleared(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "", v.State.Query)
	require.Equal(t, catalog.CategoryAll, v.State.Category)
	require.True(t, v.IsFavorite("mrr"))
	require.Equal(t, 3, v.Visible)
}
