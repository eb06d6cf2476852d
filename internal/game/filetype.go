package game

import (
	"path/filepath"
	"strings"

	"ethertreasure-go/internal/protocol"
)

// FileTypeOf maps a filename's extension to the frame type used to
// announce it (TEXT/VIDEO/IMAGE), matching obter_tipo_arquivo's
// case-insensitive extension table. ok is false for any other extension.
func FileTypeOf(name string) (typ protocol.FrameType, ok bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return protocol.TypeText, true
	case ".mp4":
		return protocol.TypeVideo, true
	case ".jpg", ".jpeg":
		return protocol.TypeImage, true
	default:
		return 0, false
	}
}

// candidateExtensions is the fixed probe order ResolveTreasureFiles uses.
// The send path does not probe again when opening the resolved file fails.
var candidateExtensions = []string{".txt", ".jpg", ".mp4"}
