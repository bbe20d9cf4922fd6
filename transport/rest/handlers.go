package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// playerHeader carries the identity asserted by the authentication layer in front of the service.
const playerHeader = "X-Player-ID"

var (
	errMissingPlayer = errors.New("missing " + playerHeader + " header")
	errMissingTile   = errors.New("row and column are required")
)

type setupRequest struct {
	PlayerOne entity.Identity `json:"player_one"`
	PlayerTwo entity.Identity `json:"player_two"`
}

type moveRequest struct {
	Row    *int `json:"row"`
	Column *int `json:"column"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleSetupGame(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	game, err := that.uGame.SetupGame(r.Context(), req.PlayerOne, req.PlayerTwo)
	if err != nil {
		that.writeAppError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeAppError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleMakeTurn(w http.ResponseWriter, r *http.Request) {
	player := entity.Identity(r.Header.Get(playerHeader))
	if player == "" {
		that.writeError(w, http.StatusUnauthorized, errMissingPlayer)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Row == nil || req.Column == nil {
		that.writeError(w, http.StatusBadRequest, errMissingTile)
		return
	}

	tile := entity.Tile{Row: *req.Row, Column: *req.Column}

	game, err := that.uGame.MakeTurn(r.Context(), r.PathValue("id"), player, tile)
	if err != nil {
		that.writeAppError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

var errorStatuses = []struct {
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

// statusFor maps domain errors to HTTP statuses. Known kinds resolve to their sentinel.
func statusFor(err error) (int, error) {
	for _, known := range errorStatuses {
		if errors.Is(err, known.err) {
			return known.status, known.err
		}
	}

	return http.StatusInternalServerError, err
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeAppError(w http.ResponseWriter, err error) {
	status, public := statusFor(err)
	that.writeError(w, status, public)
}

func (that *Server) writeError(w http.ResponseWriter, status int, err error) {
	log := that.logger.With("method", "writeError")

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}
