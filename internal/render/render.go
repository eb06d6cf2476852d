// Package render draws the game grid as text, the server and client's only
// "UI". It has no notion of the network — callers own redraw timing.
package render

import (
	"fmt"
	"strings"

	"ethertreasure-go/internal/game"
)

// Grid renders the board to a string: column headers, one row per y from
// top to bottom, and a legend. showAllTreasures reveals untouched treasure
// cells ('T') as the server's operator view does; a client should pass
// false so it only ever sees treasures it has actually found.
func Grid(s *game.State, title string, showAllTreasures bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	pos := s.Position()
	fmt.Fprintf(&b, "Player position: (%d,%d)\n\n", pos.X, pos.Y)

	b.WriteString("  ")
	for x := 0; x < game.GridSize; x++ {
		fmt.Fprintf(&b, " %d ", x)
	}
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat("---", game.GridSize))
	b.WriteString("\n")

	for y := game.GridSize - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%d |", y)
		for x := 0; x < game.GridSize; x++ {
			b.WriteByte(' ')
			b.WriteByte(cellRune(s, pos, x, y, showAllTreasures))
			b.WriteByte(' ')
		}
		b.WriteString("|\n")
	}

	b.WriteString("  ")
	b.WriteString(strings.Repeat("---", game.GridSize))
	b.WriteString("\n\nLegend: J=player  .=visited  T=treasure  X=found treasure\n")
	return b.String()
}

func cellRune(s *game.State, player game.Position, x, y int, showAllTreasures bool) byte {
	switch {
	case x == player.X && y == player.Y:
		return 'J'
	case s.Visited(x, y):
		if s.HasTreasure(x, y) {
			return treasureGlyph(s, x, y)
		}
		return '.'
	case showAllTreasures && s.HasTreasure(x, y):
		return 'T'
	default:
		return ' '
	}
}

func treasureGlyph(s *game.State, x, y int) byte {
	for i := 1; i <= game.TreasureCount; i++ {
		t, ok := s.Treasure(i)
		if ok && t.Pos.X == x && t.Pos.Y == y {
			if t.Found {
				return 'X'
			}
			return 'T'
		}
	}
	return '.'
}

// ClientGrid renders the client's local view: its own position, the cells
// it has visited, and the treasures it has actually collected — it never
// reveals treasure cells it hasn't stood on and received a file for.
func ClientGrid(s *game.ClientState, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	pos := s.Position()
	fmt.Fprintf(&b, "Player position: (%d,%d)\n\n", pos.X, pos.Y)

	found := make(map[game.Position]bool)
	for _, d := range s.Discoveries() {
		found[d.Pos] = true
	}

	b.WriteString("  ")
	for x := 0; x < game.GridSize; x++ {
		fmt.Fprintf(&b, " %d ", x)
	}
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat("---", game.GridSize))
	b.WriteString("\n")

	for y := game.GridSize - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%d |", y)
		for x := 0; x < game.GridSize; x++ {
			cell := byte(' ')
			switch {
			case x == pos.X && y == pos.Y:
				cell = 'J'
			case found[game.Position{X: x, Y: y}]:
				cell = 'X'
			case s.Visited(x, y):
				cell = '.'
			}
			b.WriteByte(' ')
			b.WriteByte(cell)
			b.WriteByte(' ')
		}
		b.WriteString("|\n")
	}

	b.WriteString("  ")
	b.WriteString(strings.Repeat("---", game.GridSize))
	fmt.Fprintf(&b, "\n\nTreasures collected: %d\nLegend: J=player  .=visited  X=collected treasure\n", len(found))
	return b.String()
}
