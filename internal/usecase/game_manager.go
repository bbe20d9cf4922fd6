package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const tracerName = "github.com/rocketscienceinc/tictactoe-engine/internal/usecase"

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error)
}

type GameManager struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	gameRepo gameRepo

	newID func() string
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),
		tracer: otel.Tracer(tracerName),

		gameRepo: gameRepo,
		newID:    uuid.NewString,
	}
}

// SetupGame creates and stores a new game between two players.
func (that *GameManager) SetupGame(ctx context.Context, playerOne, playerTwo entity.Identity) (*entity.Game, error) {
	ctx, span := that.tracer.Start(ctx, "GameManager.SetupGame")
	defer span.End()

	log := that.logger.With("method", "SetupGame")

	game, err := tictactoe.Setup(that.newID(), playerOne, playerTwo)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to setup game: %w", err)
	}

	span.SetAttributes(attribute.String("game.id", game.ID))

	if err = that.gameRepo.Create(ctx, &game); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "gameID", game.ID, "players", game.Players)

	return &game, nil
}

// MakeTurn applies a move inside a single storage update. A move rejected by the rules
// or by a concurrent write leaves the stored game untouched.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, player entity.Identity, tile entity.Tile) (*entity.Game, error) {
	ctx, span := that.tracer.Start(ctx, "GameManager.MakeTurn", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("game.player", string(player)),
		attribute.Int("game.tile.row", tile.Row),
		attribute.Int("game.tile.column", tile.Column),
	))
	defer span.End()

	log := that.logger.With("method", "MakeTurn", "gameID", gameID, "player", player)

	game, err := that.gameRepo.Update(ctx, gameID, func(game *entity.Game) error {
		next, err := tictactoe.Play(*game, player, tile)
		if err != nil {
			return err
		}

		*game = next
		return nil
	})
	if err != nil {
		recordError(span, err)
		log.Debug("move rejected", "row", tile.Row, "column", tile.Column, "error", err)
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	span.SetAttributes(attribute.String("game.status", game.State.Status))

	switch {
	case game.IsWon():
		log.Info("game won", "winner", game.State.Winner, "turn", game.Turn)
	case game.IsTie():
		log.Info("game tied", "turn", game.Turn)
	default:
		log.Debug("move accepted", "row", tile.Row, "column", tile.Column, "turn", game.Turn)
	}

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	ctx, span := that.tracer.Start(ctx, "GameManager.GetGame", trace.WithAttributes(
		attribute.String("game.id", gameID),
	))
	defer span.End()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
