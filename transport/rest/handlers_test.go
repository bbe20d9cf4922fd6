package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	_, st := suite.NewSQLite(t)
	manager := usecase.NewGameManager(discardLogger(), repository.NewSQLiteGameRepository(st.Connection))

	srv := httptest.NewServer(New(discardLogger(), manager).Handler())
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, method, url, player, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)

	if player != "" {
		req.Header.Set(playerHeader, player)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeGame(t *testing.T, resp *http.Response) entity.Game {
	t.Helper()

	var game entity.Game
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&game))

	return game
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body.Error
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/ping", "", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestGameEndpoints_PlayerOneWins(t *testing.T) {
	srv := newTestServer(t)

	// Given: a game set up over HTTP
	resp := do(t, http.MethodPost, srv.URL+"/games", "", `{"player_one":"alice","player_two":"bob"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	game := decodeGame(t, resp)
	require.NotEmpty(t, game.ID)
	assert.Equal(t, uint8(1), game.Turn)
	assert.Equal(t, entity.StatusActive, game.State.Status)

	movesURL := srv.URL + "/games/" + game.ID + "/moves"

	// When: the players alternate until alice completes the top row
	moves := []struct {
		player string
		body   string
		turn   uint8
	}{
		{"alice", `{"row":0,"column":0}`, 2},
		{"bob", `{"row":1,"column":0}`, 3},
		{"alice", `{"row":0,"column":1}`, 4},
		{"bob", `{"row":1,"column":1}`, 5},
		{"alice", `{"row":0,"column":2}`, 5},
	}
	for _, m := range moves {
		resp = do(t, http.MethodPost, movesURL, m.player, m.body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, m.turn, decodeGame(t, resp).Turn)
	}

	// Then: the stored game is won by alice
	resp = do(t, http.MethodGet, srv.URL+"/games/"+game.ID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored := decodeGame(t, resp)
	assert.Equal(t, entity.GameState{Status: entity.StatusWon, Winner: "alice"}, stored.State)
	assert.Equal(t, uint8(5), stored.Turn)

	// Then: further moves are rejected with a conflict
	resp = do(t, http.MethodPost, movesURL, "bob", `{"row":2,"column":2}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperror.ErrGameAlreadyOver.Error(), decodeError(t, resp))
}

func TestGameEndpoints_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/games", "", `{"player_one":"alice","player_two":"bob"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	movesURL := srv.URL + "/games/" + decodeGame(t, resp).ID + "/moves"

	tests := []struct {
		name   string
		method string
		url    string
		player string
		body   string
		status int
	}{
		{"identical players", http.MethodPost, srv.URL + "/games", "", `{"player_one":"alice","player_two":"alice"}`, http.StatusBadRequest},
		{"malformed setup body", http.MethodPost, srv.URL + "/games", "", `{`, http.StatusBadRequest},
		{"unknown game", http.MethodGet, srv.URL + "/games/missing", "", "", http.StatusNotFound},
		{"move on unknown game", http.MethodPost, srv.URL + "/games/missing/moves", "alice", `{"row":0,"column":0}`, http.StatusNotFound},
		{"missing player header", http.MethodPost, movesURL, "", `{"row":0,"column":0}`, http.StatusUnauthorized},
		{"malformed move body", http.MethodPost, movesURL, "alice", `nope`, http.StatusBadRequest},
		{"empty move body", http.MethodPost, movesURL, "alice", `{}`, http.StatusBadRequest},
		{"move without column", http.MethodPost, movesURL, "alice", `{"row":2}`, http.StatusBadRequest},
		{"move without row", http.MethodPost, movesURL, "alice", `{"column":1}`, http.StatusBadRequest},
		{"player not in game", http.MethodPost, movesURL, "mallory", `{"row":0,"column":0}`, http.StatusForbidden},
		{"not your turn", http.MethodPost, movesURL, "bob", `{"row":0,"column":0}`, http.StatusConflict},
		{"tile out of bounds", http.MethodPost, movesURL, "alice", `{"row":3,"column":0}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.player, tt.body)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decodeError(t, resp))
		})
	}

	// Then: none of the rejected requests placed a mark
	resp = do(t, http.MethodGet, strings.TrimSuffix(movesURL, "/moves"), "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	game := decodeGame(t, resp)
	assert.Equal(t, uint8(1), game.Turn)
	assert.Equal(t, entity.Board{}, game.Board)
}

func TestGameEndpoints_TileAlreadySet(t *testing.T) {
	srv := newTestServer(t)

	// Given: a game where alice holds the center
	resp := do(t, http.MethodPost, srv.URL+"/games", "", `{"player_one":"alice","player_two":"bob"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	movesURL := srv.URL + "/games/" + decodeGame(t, resp).ID + "/moves"

	resp = do(t, http.MethodPost, movesURL, "alice", `{"row":1,"column":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// When: bob plays the same tile
	resp = do(t, http.MethodPost, movesURL, "bob", `{"row":1,"column":1}`)

	// Then: the move is rejected with a conflict carrying the bare error message
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperror.ErrTileAlreadySet.Error(), decodeError(t, resp))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperror.ErrInvalidConfig, http.StatusBadRequest},
		{apperror.ErrTileOutOfBounds, http.StatusBadRequest},
		{apperror.ErrPlayerNotInGame, http.StatusForbidden},
		{apperror.ErrGameNotFound, http.StatusNotFound},
		{apperror.ErrGameAlreadyOver, http.StatusConflict},
		{apperror.ErrNotYourTurn, http.StatusConflict},
		{apperror.ErrTileAlreadySet, http.StatusConflict},
		{apperror.ErrConcurrentUpdate, http.StatusConflict},
		{apperror.ErrGameAlreadyExists, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			// Given: the kind wrapped the way the use case returns it
			wrapped := fmt.Errorf("failed to make turn: %w", tt.err)

			// When: it is mapped
			status, public := statusFor(wrapped)

			// Then: the status matches and the bare sentinel is exposed
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.err, public)
		})
	}

	t.Run("unknown error", func(t *testing.T) {
		err := errors.New("boom")

		status, public := statusFor(err)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, err, public)
	})
}

type failingUseCase struct{}

func (failingUseCase) SetupGame(context.Context, entity.Identity, entity.Identity) (*entity.Game, error) {
	return nil, errors.New("connection refused")
}

func (failingUseCase) MakeTurn(context.Context, string, entity.Identity, entity.Tile) (*entity.Game, error) {
	return nil, errors.New("connection refused")
}

func (failingUseCase) GetGame(context.Context, string) (*entity.Game, error) {
	return nil, errors.New("connection refused")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	srv := httptest.NewServer(New(discardLogger(), failingUseCase{}).Handler())
	t.Cleanup(srv.Close)

	resp := do(t, http.MethodGet, srv.URL+"/games/g1", "", "")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeError(t, resp))
}
