package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"subboard/internal/core"
	"subboard/internal/metrics/memory"
)

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishFavoriteToggled(_ context.Context, sessionID, reportID string, favorite bool) error {
	state := "off"
	if favorite {
		state = "on"
	}
	p.events = append(p.events, sessionID+":"+reportID+":"+state)
	return p.err
}

func TestFavoritesService_Toggle(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewFavoritesService(memory.New(nil), testCatalog(t), pub, nil)
	ctx := context.Background()

	fav, err := s.Toggle(ctx, "s1", "mrr")
	require.NoError(t, err)
	require.True(t, fav)

	set, err := s.Favorites(ctx, "s1")
	require.NoError(t, err)
	require.True(t, set.Has("mrr"))

	fav, err = s.Toggle(ctx, "s1", "mrr")
	require.NoError(t, err)
	require.False(t, fav)
	require.Equal(t, []string{"s1:mrr:on", "s1:mrr:off"}, pub.events)

	_, err = s.Toggle(ctx, "s1", "unknown")
	require.ErrorIs(t, err, core.ErrUnknownReport)
	_, err = s.Toggle(ctx, "s1", "")
	require.ErrorIs(t, err, core.ErrEmptyReportID)
	require.Len(t, pub.events, 2)
}

func TestFavoritesService_PublishFailureDoesNotFailToggle(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := NewFavoritesService(memory.New(nil), testCatalog(t), pub, nil)

	fav, err := s.Toggle(context.Background(), "s1", "churn")
	require.NoError(t, err)
	require.True(t, fav)
}

func TestFavoritesService_NoSession(t *testing.T) {
	s := NewFavoritesService(memory.New(nil), testCatalog(t), nil, nil)
	set, err := s.Favorites(context.Background(), "")
	require.NoError(t, err)
	require.Zero(t, set.Len())
}
