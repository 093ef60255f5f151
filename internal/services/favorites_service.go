package services

import (
	"context"
	"fmt"
	"strings"

	"subboard/internal/catalog"
	"subboard/internal/core"
	applog "subboard/internal/log"
	"subboard/internal/ports"
)

// FavoriteEventPublisher announces favorite toggles to other processes.
type FavoriteEventPublisher interface {
	PublishFavoriteToggled(ctx context.Context, sessionID, reportID string, favorite bool) error
}

// FavoritesService persists favorites per session and publishes each toggle.
type FavoritesService struct {
	store     ports.FavoriteStore
	catalog   *catalog.Catalog
	publisher FavoriteEventPublisher
	logger    *applog.Logger
}

// NewFavoritesService wires the store. publisher may be nil.
func NewFavoritesService(store ports.FavoriteStore, cat *catalog.Catalog, publisher FavoriteEventPublisher, logger *applog.Logger) *FavoritesService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FavoritesService{
		store:     store,
		catalog:   cat,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentFavorites),
	}
}

// Favorites returns the session's favorite set. Ids no longer in the catalog
// are kept; counting and filtering ignore them.
func (s *FavoritesService) Favorites(ctx context.Context, sessionID string) (catalog.FavoriteSet, error) {
	if sessionID == "" {
		return catalog.NewFavoriteSet(), nil
	}
	ids, err := s.store.ListFavorites(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return catalog.NewFavoriteSet(ids...), nil
}

// Toggle flips reportID for the session and returns the new status. A failed
// publish is logged and does not fail the toggle.
func (s *FavoritesService) Toggle(ctx context.Context, sessionID, reportID string) (bool, error) {
	id := strings.TrimSpace(reportID)
	if id == "" {
		return false, core.ErrEmptyReportID
	}
	if !s.catalog.Has(id) {
		return false, fmt.Errorf("%w: %s", core.ErrUnknownReport, id)
	}
	favorite, err := s.store.ToggleFavorite(ctx, sessionID, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	s.logger.InfoContext(ctx, "Favorite toggled",
		applog.FieldSessionID, sessionID,
		applog.FieldReportID, id,
		applog.FieldFavorite, favorite)

	if s.publisher == nil {
		return favorite, nil
	}
	if err := s.publisher.PublishFavoriteToggled(ctx, sessionID, id, favorite); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish favorite toggle",
			applog.FieldReportID, id,
			applog.FieldError, err)
	}
	return favorite, nil
}
