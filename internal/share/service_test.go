package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/idea"
)

func sampleIdeas() []idea.VideoIdea {
	return []idea.VideoIdea{
		{ID: "a", Title: "Behind the counter", Description: "A day at the shop", DurationSeconds: 30, FocusType: idea.FocusDirect},
		{ID: "b", Title: "Customer voices", Description: "Three quick testimonials", DurationSeconds: 45, FocusType: idea.FocusIndirect},
	}
}

func TestRandomIDShape(t *testing.T) {
	for i := 0; i < 500; i++ {
		id, err := RandomID()
		require.NoError(t, err)
		require.True(t, ValidID(id), id)
	}
}

func TestValidID(t *testing.T) {
	require.True(t, ValidID("100000"))
	require.True(t, ValidID("999999"))
	require.False(t, ValidID(""))
	require.False(t, ValidID("012345"))
	require.False(t, ValidID("12345"))
	require.False(t, ValidID("1234567"))
	require.False(t, ValidID("12a456"))
}

func TestCreatePersistsSnapshot(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := &Service{Store: store, NewID: sequence("123456"), Now: func() time.Time { return now }}

	ideas := sampleIdeas()
	snap, err := svc.Create(context.Background(), CreateInput{
		CompanyName:   "  Panadería Sol ",
		Activity:      "Bakery",
		AllIdeas:      ideas,
		SelectedIdeas: ideas[1:],
	})
	require.NoError(t, err)
	require.Equal(t, "123456", snap.ID)
	require.Equal(t, "  Panadería Sol ", snap.CompanyName)
	require.Equal(t, now, snap.CreatedAt)

	got, found, err := svc.Get(context.Background(), "123456")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, snap, got)
}

func TestCreateRetriesOnCollision(t *testing.T) {
	store := newMemStore()
	store.rows["111111"] = Snapshot{ID: "111111"}
	store.taken["222222"] = true
	svc := &Service{Store: store, NewID: sequence("111111", "222222", "333333")}

	snap, err := svc.Create(context.Background(), CreateInput{CompanyName: "Acme", AllIdeas: sampleIdeas()})
	require.NoError(t, err)
	require.Equal(t, "333333", snap.ID)
	require.NotNil(t, snap.SelectedIdeas)
	require.Empty(t, snap.SelectedIdeas)
}

func TestCreateExhaustsAttempts(t *testing.T) {
	store := newMemStore()
	store.rows["111111"] = Snapshot{ID: "111111"}
	svc := &Service{Store: store, NewID: sequence("111111")}

	_, err := svc.Create(context.Background(), CreateInput{CompanyName: "Acme", AllIdeas: sampleIdeas()})
	require.ErrorIs(t, err, ErrIDExhausted)
	require.Len(t, store.rows, 1)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(newMemStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{CompanyName: "  ", AllIdeas: sampleIdeas()})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{CompanyName: "Acme"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{
		CompanyName:   "Acme",
		AllIdeas:      sampleIdeas(),
		SelectedIdeas: []idea.VideoIdea{{ID: "zzz", Title: "x"}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePropagatesStoreErrors(t *testing.T) {
	store := newMemStore()
	store.failCheck = errBoom
	svc := &Service{Store: store, NewID: sequence("123456")}

	_, err := svc.Create(context.Background(), CreateInput{CompanyName: "Acme", AllIdeas: sampleIdeas()})
	require.ErrorIs(t, err, errBoom)
}

func TestGet(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	ctx := context.Background()

	_, _, err := svc.Get(ctx, "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = svc.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, found, err := svc.Get(ctx, "654321")
	require.NoError(t, err)
	require.False(t, found)

	store.failGet = errBoom
	_, _, err = svc.Get(ctx, "654321")
	require.ErrorIs(t, err, errBoom)
}
