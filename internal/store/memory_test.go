package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/session"
	"github.com/robalobadob/rhymegrid/internal/store"
)

func TestPuzzleStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewPuzzleStore()

	p := challenge.FallbackPuzzle()
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Same(t, p, got)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewSessionStore()

	sess := session.New(challenge.FallbackPuzzle())
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Same(t, sess, got)

	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting twice is harmless.
	require.NoError(t, s.Delete(ctx, sess.ID))
}
