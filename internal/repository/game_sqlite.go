package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type sqliteGame struct {
	conn *sql.DB
}

// NewSQLiteGameRepository stores games as JSON documents with a version counter.
// The table is created by sqlite.Storage.Init.
func NewSQLiteGameRepository(conn *sql.DB) GameRepository {
	return &sqliteGame{
		conn: conn,
	}
}

func (that *sqliteGame) Create(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	query := `INSERT INTO games (id, record, version) VALUES (?, ?, 1) ON CONFLICT(id) DO NOTHING`

	result, err := that.conn.ExecContext(ctx, query, game.ID, string(gameJSON))
	if err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	if inserted == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, game.ID)
	}

	return nil
}

func (that *sqliteGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	game, _, err := that.get(ctx, id)
	return game, err
}

func (that *sqliteGame) Update(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error) {
	game, version, err := that.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = fn(game); err != nil {
		return nil, err
	}

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game: %w", err)
	}

	query := `UPDATE games SET record = ?, version = version + 1 WHERE id = ? AND version = ?`

	result, err := that.conn.ExecContext(ctx, query, string(gameJSON), id, version)
	if err != nil {
		return nil, fmt.Errorf("can't update game: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("can't update game: %w", err)
	}

	// either the version moved on or the row is gone
	if updated == 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrConcurrentUpdate, id)
	}

	return game, nil
}

func (that *sqliteGame) DeleteByID(ctx context.Context, id string) error {
	result, err := that.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete game: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't delete game: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func (that *sqliteGame) get(ctx context.Context, id string) (*entity.Game, int64, error) {
	var (
		record  string
		version int64
	)

	query := `SELECT record, version FROM games WHERE id = ?`

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&record, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("can't find game: %w", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(record), &game); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, version, nil
}
