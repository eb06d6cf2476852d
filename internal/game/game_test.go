package game

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"ethertreasure-go/internal/protocol"
)

func TestNewStatePlacesDistinctTreasures(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	seen := map[Position]bool{}
	for i := 1; i <= TreasureCount; i++ {
		tr, ok := s.Treasure(i)
		if !ok {
			t.Fatalf("treasure %d missing", i)
		}
		if !tr.Pos.InBounds() {
			t.Errorf("treasure %d placed out of bounds: %+v", i, tr.Pos)
		}
		if seen[tr.Pos] {
			t.Errorf("treasure %d collides with another treasure at %+v", i, tr.Pos)
		}
		seen[tr.Pos] = true
	}
	if s.Position() != (Position{0, 0}) {
		t.Errorf("player should start at origin, got %+v", s.Position())
	}
	if !s.Visited(0, 0) {
		t.Error("origin should be marked visited at start")
	}
}

func TestMoveRejectsOutOfBounds(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	if _, err := s.Move(protocol.TypeMoveLeft); err != ErrOutOfBounds {
		t.Fatalf("moving left from origin: got %v, want ErrOutOfBounds", err)
	}
	if s.Position() != (Position{0, 0}) {
		t.Errorf("player moved despite rejected move: %+v", s.Position())
	}
}

func TestMoveAppliesAndMarksVisited(t *testing.T) {
	s := NewState(rand.New(rand.NewSource(1)))
	pos, err := s.Move(protocol.TypeMoveRight)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if pos != (Position{1, 0}) {
		t.Errorf("got %+v, want (1,0)", pos)
	}
	if !s.Visited(1, 0) {
		t.Error("(1,0) should be visited after moving there")
	}
}

func TestCheckTreasureFoundOnce(t *testing.T) {
	s := &State{player: Position{3, 3}}
	s.treasures[0] = Treasure{Pos: Position{3, 3}}

	idx, found := s.CheckTreasure()
	if !found || idx != 1 {
		t.Fatalf("first check: got (%d, %v), want (1, true)", idx, found)
	}
	idx, found = s.CheckTreasure()
	if found {
		t.Fatalf("second check on same treasure should report already-found, got (%d, %v)", idx, found)
	}
}

func TestFileTypeOf(t *testing.T) {
	cases := map[string]protocol.FrameType{
		"1.txt":  protocol.TypeText,
		"2.jpg":  protocol.TypeImage,
		"2.JPEG": protocol.TypeImage,
		"3.mp4":  protocol.TypeVideo,
	}
	for name, want := range cases {
		got, ok := FileTypeOf(name)
		if !ok || got != want {
			t.Errorf("FileTypeOf(%q) = (%v, %v), want (%v, true)", name, got, ok, want)
		}
	}
	if _, ok := FileTypeOf("4.bin"); ok {
		t.Error("FileTypeOf(4.bin) should report unknown extension")
	}
}

func TestResolveTreasureFilesPrefersExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewState(rand.New(rand.NewSource(1)))
	ResolveTreasureFiles(s, dir)

	tr, _ := s.Treasure(2)
	if tr.FileName != "2.jpg" {
		t.Errorf("treasure 2 filename = %q, want 2.jpg", tr.FileName)
	}
	tr, _ = s.Treasure(1)
	if tr.FileName != "1.txt" {
		t.Errorf("treasure 1 (no file on disk) should default to 1.txt, got %q", tr.FileName)
	}
}
