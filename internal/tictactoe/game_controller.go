package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// WinCombos lists the 8 lines of the board: rows, columns, diagonals.
var WinCombos = [8][3]entity.Tile{
	{{Row: 0, Column: 0}, {Row: 0, Column: 1}, {Row: 0, Column: 2}},
	{{Row: 1, Column: 0}, {Row: 1, Column: 1}, {Row: 1, Column: 2}},
	{{Row: 2, Column: 0}, {Row: 2, Column: 1}, {Row: 2, Column: 2}},
	{{Row: 0, Column: 0}, {Row: 1, Column: 0}, {Row: 2, Column: 0}},
	{{Row: 0, Column: 1}, {Row: 1, Column: 1}, {Row: 2, Column: 1}},
	{{Row: 0, Column: 2}, {Row: 1, Column: 2}, {Row: 2, Column: 2}},
	{{Row: 0, Column: 0}, {Row: 1, Column: 1}, {Row: 2, Column: 2}},
	{{Row: 0, Column: 2}, {Row: 1, Column: 1}, {Row: 2, Column: 0}},
}

// Setup returns a fresh game between two distinct players.
func Setup(id string, playerOne, playerTwo entity.Identity) (entity.Game, error) {
	if playerOne == "" || playerTwo == "" || playerOne == playerTwo {
		return entity.Game{}, fmt.Errorf("%w: %q and %q", apperror.ErrInvalidConfig, playerOne, playerTwo)
	}

	return *entity.NewGame(id, [2]entity.Identity{playerOne, playerTwo}), nil
}

// Play applies a move by player on tile and returns the resulting game.
// The game is taken by value, so on error the caller still holds the unchanged record.
func Play(game entity.Game, player entity.Identity, tile entity.Tile) (entity.Game, error) {
	if err := validateMove(&game, player, tile); err != nil {
		return game, err
	}

	sign := entity.SignOf(game.CurrentPlayerIndex())
	game.Board[tile.Row][tile.Column] = sign
	updateGameState(&game, player, tile)

	return game, nil
}

// validateMove - checks if the move is valid, in the order the errors are reported.
func validateMove(game *entity.Game, player entity.Identity, tile entity.Tile) error {
	if !game.IsActive() {
		return apperror.ErrGameAlreadyOver
	}

	if game.PlayerIndex(player) < 0 {
		return fmt.Errorf("%w: %q", apperror.ErrPlayerNotInGame, player)
	}

	if game.CurrentPlayer() != player {
		return apperror.ErrNotYourTurn
	}

	if !tile.InBounds() {
		return fmt.Errorf("%w: row %d, column %d", apperror.ErrTileOutOfBounds, tile.Row, tile.Column)
	}

	if game.Board[tile.Row][tile.Column] != entity.Empty {
		return fmt.Errorf("%w: row %d, column %d", apperror.ErrTileAlreadySet, tile.Row, tile.Column)
	}

	return nil
}

// updateGameState - moves the game to won or tie, or advances the turn.
// The turn counter is not advanced on the deciding move.
func updateGameState(game *entity.Game, player entity.Identity, tile entity.Tile) {
	switch {
	case winningLineThrough(game.Board, tile):
		game.State = entity.GameState{Status: entity.StatusWon, Winner: player}
	case game.Turn == entity.MaxTurn:
		game.State = entity.GameState{Status: entity.StatusTie}
	default:
		game.Turn++
	}
}

// winningLineThrough reports whether any line crossing tile is filled with the sign at tile.
func winningLineThrough(board entity.Board, tile entity.Tile) bool {
	sign := board[tile.Row][tile.Column]
	if sign == entity.Empty {
		return false
	}

	for _, combo := range WinCombos {
		if !lineContains(combo, tile) {
			continue
		}
		if isWinningTrio(board, combo, sign) {
			return true
		}
	}

	return false
}

func isWinningTrio(board entity.Board, combo [3]entity.Tile, sign entity.Sign) bool {
	for _, tile := range combo {
		if board[tile.Row][tile.Column] != sign {
			return false
		}
	}
	return true
}

func lineContains(combo [3]entity.Tile, tile entity.Tile) bool {
	for _, t := range combo {
		if t == tile {
			return true
		}
	}
	return false
}
