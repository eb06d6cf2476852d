package game

import "sync"

// DiscoveredTreasure is a treasure the client has actually received a file
// for — the client never learns the full board layout, only the cells it
// has visited and the treasures it has collected there.
type DiscoveredTreasure struct {
	Pos      Position
	FileName string
}

// ClientState is the client's local view of the board: its own position,
// the cells it has visited, and the treasures it has collected. Unlike
// State, it has no pre-placed treasure layout — the server is the sole
// authority on where treasures are, and the client only ever finds out by
// successfully receiving a file.
type ClientState struct {
	mu          sync.Mutex
	player      Position
	visited     [GridSize][GridSize]bool
	discoveries []DiscoveredTreasure
}

// NewClientState builds a fresh client-side view: player at (0,0), that
// cell visited, no treasures discovered yet.
func NewClientState() *ClientState {
	s := &ClientState{player: Position{0, 0}}
	s.visited[0][0] = true
	return s
}

// Move applies a locally-confirmed movement (the server has already ACKed
// it) and marks the destination visited.
func (s *ClientState) Move(dx, dy int) Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = Position{X: s.player.X + dx, Y: s.player.Y + dy}
	s.visited[s.player.Y][s.player.X] = true
	return s.player
}

// Position returns the player's current cell.
func (s *ClientState) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// Visited reports whether (x, y) has been visited.
func (s *ClientState) Visited(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || x >= GridSize || y < 0 || y >= GridSize {
		return false
	}
	return s.visited[y][x]
}

// RecordDiscovery registers a treasure file received at the player's
// current position.
func (s *ClientState) RecordDiscovery(fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discoveries = append(s.discoveries, DiscoveredTreasure{Pos: s.player, FileName: fileName})
}

// Discoveries returns a copy of the treasures collected so far.
func (s *ClientState) Discoveries() []DiscoveredTreasure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DiscoveredTreasure, len(s.discoveries))
	copy(out, s.discoveries)
	return out
}
