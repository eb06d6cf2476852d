// Package game holds the grid, player, and treasure state shared by both
// ends of the protocol, and the rules for moving around and discovering
// treasures on it.
package game

import (
	"fmt"
	"math/rand"
	"sync"

	"ethertreasure-go/internal/protocol"
)

// GridSize and TreasureCount are fixed by the game this protocol serves;
// the wire format has no room to negotiate either.
const (
	GridSize      = 8
	TreasureCount = 8
)

// Position is a zero-based (x, y) grid cell, (0,0) at the bottom-left —
// the player's starting corner.
type Position struct {
	X, Y int
}

// InBounds reports whether p falls within the GridSize x GridSize board.
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < GridSize && p.Y >= 0 && p.Y < GridSize
}

// Treasure is one of the fixed TreasureCount treasures hidden on the grid.
type Treasure struct {
	Pos      Position
	Found    bool
	FileName string // set by ResolveTreasureFiles once its payload file is known
}

// State is one game's full board: player position, visited cells, and the
// treasure layout. It is safe for concurrent use; every accessor takes the
// same mutex the server's receive pump and foreground loop both rely on,
// mirroring how the original guards mutex_jogo around all of EstadoJogo.
type State struct {
	mu        sync.Mutex
	player    Position
	visited   [GridSize][GridSize]bool
	treasures [TreasureCount]Treasure
}

// NewState builds a fresh game: player at (0,0), that cell marked visited,
// and TreasureCount treasures scattered uniformly at random over distinct
// cells (the origin is a valid treasure cell, same as the original).
func NewState(rng *rand.Rand) *State {
	s := &State{player: Position{0, 0}}
	s.visited[0][0] = true

	occupied := make(map[Position]bool, TreasureCount)
	for i := range s.treasures {
		var pos Position
		for {
			pos = Position{X: rng.Intn(GridSize), Y: rng.Intn(GridSize)}
			if !occupied[pos] {
				break
			}
		}
		occupied[pos] = true
		s.treasures[i] = Treasure{Pos: pos}
	}
	return s
}

// ErrOutOfBounds is returned by Move when the requested direction would
// take the player off the grid.
var ErrOutOfBounds = fmt.Errorf("game: move would leave the %dx%d grid", GridSize, GridSize)

// Move applies a movement request (one of the four TypeMove* frame types)
// and returns the player's resulting position. On failure the player does
// not move and ErrOutOfBounds is returned — per the redesign this project
// applies (see SPEC_FULL.md §4.10), callers must NACK in this case rather
// than ACKing a move that did not happen.
func (s *State) Move(dir protocol.FrameType) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.player
	switch dir {
	case protocol.TypeMoveRight:
		next.X++
	case protocol.TypeMoveLeft:
		next.X--
	case protocol.TypeMoveUp:
		next.Y++
	case protocol.TypeMoveDown:
		next.Y--
	default:
		return s.player, fmt.Errorf("game: %v is not a movement type", dir)
	}

	if !next.InBounds() {
		return s.player, ErrOutOfBounds
	}

	s.player = next
	s.visited[next.Y][next.X] = true
	return next, nil
}

// Position returns the player's current cell.
func (s *State) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// CheckTreasure reports whether the player's current cell holds a
// not-yet-found treasure; if so it marks the treasure found (exactly once,
// matching verificar_tesouro's encontrado latch) and returns its 1-based
// index and true. A treasure already claimed, or no treasure at all,
// reports (0, false).
func (s *State) CheckTreasure() (index int, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.treasures {
		t := &s.treasures[i]
		if t.Pos == s.player && !t.Found {
			t.Found = true
			return i + 1, true
		}
	}
	return 0, false
}

// Treasure returns a copy of the treasure at the given 1-based index, or
// false if idx is out of range.
func (s *State) Treasure(idx int) (Treasure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 1 || idx > len(s.treasures) {
		return Treasure{}, false
	}
	return s.treasures[idx-1], true
}

// SetTreasureFile records the resolved payload filename for a treasure,
// populated by ResolveTreasureFiles at startup.
func (s *State) SetTreasureFile(idx int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx >= 1 && idx <= len(s.treasures) {
		s.treasures[idx-1].FileName = name
	}
}

// SetTreasurePosition relocates a treasure to pos, without disturbing its
// found/file-name state. Exposed for admin tooling and deterministic
// tests; normal play never needs to move a treasure once placed.
func (s *State) SetTreasurePosition(idx int, pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx >= 1 && idx <= len(s.treasures) {
		s.treasures[idx-1].Pos = pos
	}
}

// Visited reports whether (x, y) has ever held the player.
func (s *State) Visited(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || x >= GridSize || y < 0 || y >= GridSize {
		return false
	}
	return s.visited[y][x]
}

// HasTreasure reports whether (x, y) holds any treasure, found or not —
// used by the renderer's legend, which (per the original's imprimir_grid)
// only ever runs on the server, which may freely see the whole board.
func (s *State) HasTreasure(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.treasures {
		if t.Pos.X == x && t.Pos.Y == y {
			return true
		}
	}
	return false
}
