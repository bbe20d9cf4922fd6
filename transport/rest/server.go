package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	SetupGame(ctx context.Context, playerOne, playerTwo entity.Identity) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, player entity.Identity, tile entity.Tile) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type Server struct {
	logger *slog.Logger
	uGame  gameUseCase

	mux *http.ServeMux
}

func New(logger *slog.Logger, uGame gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "rest"),
		uGame:  uGame,
		mux:    http.NewServeMux(),
	}

	server.mux.HandleFunc("GET /ping", pingHandler)
	server.mux.HandleFunc("POST /games", server.handleSetupGame)
	server.mux.HandleFunc("GET /games/{id}", server.handleGetGame)
	server.mux.HandleFunc("POST /games/{id}/moves", server.handleMakeTurn)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.mux
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
