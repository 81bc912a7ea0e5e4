package fhtypes

import "os"

// EventKind identifies a point in the lifecycle of a directory traversal.
type EventKind int

const (
	// FolderEntering fires when the walker starts a directory, before listing it.
	FolderEntering EventKind = iota
	// SubFolderEntering fires for each accepted subdirectory before recursing.
	SubFolderEntering
	// FileEntering fires for each accepted file.
	FileEntering
	// FolderLeft fires once all children of a directory have been processed.
	FolderLeft
	// FolderIgnored fires for a subdirectory removed by the exclusion rules.
	FolderIgnored
	// FileIgnored fires for a file removed by the exclusion rules.
	FileIgnored
)

var eventKindNames = [...]string{
	FolderEntering:    "folder-entering",
	SubFolderEntering: "subfolder-entering",
	FileEntering:      "file-entering",
	FolderLeft:        "folder-left",
	FolderIgnored:     "folder-ignored",
	FileIgnored:       "file-ignored",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is delivered to a Visitor for every visited entry and every directory
// boundary.
type Event struct {
	Name     string
	FullPath string
	IsDir    bool
	// Level is the depth of the directory being processed; the root is 0.
	Level int
	Kind  EventKind
	// Node is the directory node currently being built. Visitors must not modify it.
	Node *TreeNode
	// Info is nil for FolderEntering and FolderLeft.
	Info os.FileInfo
}

// VisitAction selects what the walker does with the entry of an Event.
type VisitAction int

const (
	// ActionContinue applies the default: recurse into directories, record files by name.
	ActionContinue VisitAction = iota
	// ActionSkip drops the entry from its parent's children.
	ActionSkip
	// ActionReplace records VisitResult.Entry in place of the bare file name.
	ActionReplace
	// ActionAnnotate merges VisitResult.Annotation into the current node or file entry.
	ActionAnnotate
)

// Annotation holds computed fields merged into a node or file entry.
// Empty fields are left untouched.
type Annotation struct {
	Hash string
}

// VisitResult is what a Visitor returns. The zero value is Continue.
type VisitResult struct {
	Action     VisitAction
	Entry      FileEntry
	Annotation Annotation
}

// Continue returns the default-inclusion result.
func Continue() VisitResult { return VisitResult{Action: ActionContinue} }

// Skip excludes the entry.
func Skip() VisitResult { return VisitResult{Action: ActionSkip} }

// Replace stores entry as the file entry.
func Replace(entry FileEntry) VisitResult {
	return VisitResult{Action: ActionReplace, Entry: entry}
}

// Annotate merges a into the current node, or into the file entry on FileEntering.
func Annotate(a Annotation) VisitResult {
	return VisitResult{Action: ActionAnnotate, Annotation: a}
}

// Visitor receives walker events and decides inclusion.
type Visitor func(Event) VisitResult

// ProgressFunc observes walker events during hashing. Its return value is ignored.
type ProgressFunc func(Event) VisitResult
