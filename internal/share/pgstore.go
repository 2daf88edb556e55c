package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-videoquote/internal/db/gen"
	"github.com/noah-isme/backend-videoquote/internal/idea"
)

// PGStore keeps snapshots in the video_shares table through the generated queries.
type PGStore struct {
	Q *dbgen.Queries
}

// NewPGStore builds a PGStore over a pool, connection or transaction.
func NewPGStore(db dbgen.DBTX) PGStore {
	return PGStore{Q: dbgen.New(db)}
}

// Exists reports whether id is already taken.
func (s PGStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.Q.ShareExists(ctx, id)
}

// InsertIfAbsent writes snap unless the id already exists.
func (s PGStore) InsertIfAbsent(ctx context.Context, snap Snapshot) (bool, error) {
	videos, selected, err := encodeIdeas(snap)
	if err != nil {
		return false, err
	}
	rows, err := s.Q.InsertShare(ctx, dbgen.InsertShareParams{
		ID:             snap.ID,
		CompanyName:    snap.CompanyName,
		Activity:       snap.Activity,
		Videos:         videos,
		SelectedVideos: selected,
		CreatedAt:      pgtype.Timestamptz{Time: snap.CreatedAt, Valid: true},
	})
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Get loads the snapshot stored under id.
func (s PGStore) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	row, err := s.Q.GetShare(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	snap := Snapshot{
		ID:          row.ID,
		CompanyName: row.CompanyName,
		Activity:    row.Activity,
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}
	if err := decodeIdeas(&snap, row.Videos, row.SelectedVideos); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func encodeIdeas(snap Snapshot) ([]byte, []byte, error) {
	videos, err := json.Marshal(snap.AllIdeas)
	if err != nil {
		return nil, nil, fmt.Errorf("encode videos: %w", err)
	}
	selected := snap.SelectedIdeas
	if selected == nil {
		selected = []idea.VideoIdea{}
	}
	sel, err := json.Marshal(selected)
	if err != nil {
		return nil, nil, fmt.Errorf("encode selected videos: %w", err)
	}
	return videos, sel, nil
}

func decodeIdeas(snap *Snapshot, videos, selected []byte) error {
	if err := json.Unmarshal(videos, &snap.AllIdeas); err != nil {
		return fmt.Errorf("decode videos: %w", err)
	}
	if err := json.Unmarshal(selected, &snap.SelectedIdeas); err != nil {
		return fmt.Errorf("decode selected videos: %w", err)
	}
	return nil
}
