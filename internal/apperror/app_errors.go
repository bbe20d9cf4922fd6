package apperror

import "errors"

// Move processor errors. All of them are permanent for the request that caused them.
var (
	ErrInvalidConfig   = errors.New("players must be two distinct identities")
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrPlayerNotInGame = errors.New("player is not in this game")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrTileOutOfBounds = errors.New("tile is out of bounds")
	ErrTileAlreadySet  = errors.New("tile is already set")
)

// Storage errors.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrConcurrentUpdate  = errors.New("game was updated concurrently")
)
