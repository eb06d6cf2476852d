package game

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveTreasureFiles probes dir for "<N><ext>" (N = 1..TreasureCount, ext
// in candidateExtensions) once at server startup, mirroring
// carregar_tipos_tesouros: whichever extension's file exists on disk wins;
// if none do, the treasure still gets a name (the first candidate
// extension) so later file-transfer code always has a path to attempt,
// even though that attempt will fail until an operator drops the file in.
func ResolveTreasureFiles(s *State, dir string) {
	for i := 1; i <= TreasureCount; i++ {
		name, found := firstExisting(dir, i)
		if !found {
			name = fmt.Sprintf("%d%s", i, candidateExtensions[0])
		}
		s.SetTreasureFile(i, name)
	}
}

func firstExisting(dir string, treasureNum int) (name string, ok bool) {
	for _, ext := range candidateExtensions {
		candidate := fmt.Sprintf("%d%s", treasureNum, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			return candidate, true
		}
	}
	return "", false
}
