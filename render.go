package folderhash

import (
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/internal/differ"
)

// RenderKind selects the textual form of a change list.
type RenderKind = differ.RenderKind

const (
	// RenderBash renders one cp command per record.
	RenderBash = differ.RenderBash
	// RenderCmd renders one xcopy command per record with Windows separators.
	RenderCmd = differ.RenderCmd
	// RenderJSON renders the records as an indented JSON array.
	RenderJSON = differ.RenderJSON
	// RenderReport renders one human readable sentence per record.
	RenderReport = differ.RenderReport
)

// RenderChanges formats changes as text. The copy commands only ever add or
// overwrite files, like Apply.
func RenderChanges(changes []fhtypes.ChangeRecord, kind RenderKind) (string, error) {
	return differ.Render(changes, kind)
}
