package services

import (
	"context"

	"subboard/internal/catalog"
	applog "subboard/internal/log"
)

// DirectoryView is everything the reports directory renders for one request.
type DirectoryView struct {
	State      catalog.FilterState
	Groups     []catalog.Group
	Counts     catalog.Counts
	Categories []string
	Total      int
	Visible    int
	Empty      bool
}

// IsFavorite reports whether id is starred in this view's state.
func (v DirectoryView) IsFavorite(id string) bool {
	return v.State.Favorites.Has(id)
}

// DirectoryService applies a session's filter state to the catalog.
type DirectoryService struct {
	catalog   *catalog.Catalog
	favorites *FavoritesService
	logger    *applog.Logger
}

func NewDirectoryService(cat *catalog.Catalog, favorites *FavoritesService, logger *applog.Logger) *DirectoryService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DirectoryService{
		catalog:   cat,
		favorites: favorites,
		logger:    logger.WithComponent(applog.ComponentCatalog),
	}
}

// Directory filters the catalog by query and category for the session. An
// unknown category label selects All. An empty result is a valid view with
// Empty set, not an error.
func (s *DirectoryService) Directory(ctx context.Context, sessionID, query, category string) (DirectoryView, error) {
	favs, err := s.favorites.Favorites(ctx, sessionID)
	if err != nil {
		return DirectoryView{}, err
	}
	state := catalog.NewFilterState(favs)
	state.SetQuery(query)
	state.SetCategory(s.catalog.NormalizeCategory(category))
	return s.view(ctx, state), nil
}

// Cleared returns the directory with query and category reset; favorites are kept.
func (s *DirectoryService) Cleared(ctx context.Context, sessionID string) (DirectoryView, error) {
	favs, err := s.favorites.Favorites(ctx, sessionID)
	if err != nil {
		return DirectoryView{}, err
	}
	state := catalog.NewFilterState(favs)
	state.Clear()
	return s.view(ctx, state), nil
}

func (s *DirectoryService) view(ctx context.Context, state catalog.FilterState) DirectoryView {
	visible := s.catalog.Visible(state)
	v := DirectoryView{
		State:      state,
		Groups:     catalog.GroupByCategory(visible),
		Counts:     s.catalog.Counts(state.Favorites),
		Categories: s.catalog.Categories(),
		Total:      s.catalog.Len(),
		Visible:    len(visible),
		Empty:      len(visible) == 0,
	}
	s.logger.DebugContext(ctx, "Directory filtered",
		applog.NewFields().WithFilter(state.Query, state.Category, v.Visible).Args()...)
	return v
}

// Catalog returns the underlying catalog.
func (s *DirectoryService) Catalog() *catalog.Catalog { return s.catalog }
