package entity

const (
	StatusActive = "active"
	StatusWon    = "won"
	StatusTie    = "tie"
)

const (
	BoardSize = 3
	MaxTurn   = BoardSize * BoardSize
)

// Identity is an opaque participant token. It is authenticated outside the engine,
// here it is only compared for equality.
type Identity string

// Sign is the content of a board cell.
type Sign string

const (
	Empty Sign = ""
	X     Sign = "X"
	O     Sign = "O"
)

// Tile addresses a board cell.
type Tile struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (that Tile) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Column >= 0 && that.Column < BoardSize
}

type Board [BoardSize][BoardSize]Sign

// GameState is Active, Won (with the winner) or Tie.
type GameState struct {
	Status string   `json:"status"`
	Winner Identity `json:"winner,omitempty"`
}

type Game struct {
	ID      string      `json:"id"`
	Players [2]Identity `json:"players"`
	Turn    uint8       `json:"turn"`
	Board   Board       `json:"board"`
	State   GameState   `json:"state"`
}

func NewGame(id string, players [2]Identity) *Game {
	return &Game{
		ID:      id,
		Players: players,
		Turn:    1,
		State:   GameState{Status: StatusActive},
	}
}

func (that *Game) IsActive() bool {
	return that.State.Status == StatusActive
}

func (that *Game) IsWon() bool {
	return that.State.Status == StatusWon
}

func (that *Game) IsTie() bool {
	return that.State.Status == StatusTie
}

// CurrentPlayerIndex returns the index into Players of the identity allowed to move.
func (that *Game) CurrentPlayerIndex() int {
	return int((that.Turn - 1) % 2)
}

func (that *Game) CurrentPlayer() Identity {
	return that.Players[that.CurrentPlayerIndex()]
}

// PlayerIndex returns the position of the identity in Players, or -1.
func (that *Game) PlayerIndex(player Identity) int {
	for i, p := range that.Players {
		if p == player {
			return i
		}
	}
	return -1
}

// SignOf returns the mark placed by the player at the given index.
func SignOf(playerIndex int) Sign {
	if playerIndex == 0 {
		return X
	}
	return O
}
