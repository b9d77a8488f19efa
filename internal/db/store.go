// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Reader is every query the player core issues. All of them are reads.
// Missing rows are reported as sql.ErrNoRows.
type Reader interface {
	// display functions
	GetDisplayByToken(ctx context.Context, token string) (model.Display, error)
	ListPairedDisplays(ctx context.Context) ([]model.Display, error)

	// schedule functions
	ListActiveSchedulesForDisplay(ctx context.Context, displayID int) ([]model.Schedule, error)
	ListSchedulesForDisplay(ctx context.Context, displayID int) ([]model.Schedule, error)

	// content functions
	GetLayoutByID(ctx context.Context, id int) (model.Layout, error)
	GetPlaylistByID(ctx context.Context, id int) (model.Playlist, error)
}

type Store interface {
	Reader

	// View runs fn inside one read-only transaction. The transaction is
	// always closed before View returns.
	View(ctx context.Context, fn func(r Reader) error) error
}

// queries implements Reader on top of either the pool or a transaction.
type queries struct {
	q sqlx.QueryerContext
}

type pgStore struct {
	queries
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{queries: queries{q: conn}, db: conn}
}

func (s *pgStore) View(ctx context.Context, fn func(r Reader) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		log.Error().Err(err).Msg("failed to open read transaction")
		return fmt.Errorf("begin read transaction: %w", err)
	}

	if err := fn(queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("failed to roll back read transaction")
		}
		return err
	}

	// nothing was written, commit just releases the snapshot
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("close read transaction: %w", err)
	}
	return nil
}
