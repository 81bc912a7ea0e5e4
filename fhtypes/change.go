package fhtypes

// ChangeKind classifies a ChangeRecord.
type ChangeKind string

const (
	// MissingSubDir means a whole subdirectory is absent from the target.
	MissingSubDir ChangeKind = "missing-subdir"
	// MissingFiles means the target directory has no files at all.
	MissingFiles ChangeKind = "missing-files"
	// FileMismatch means the target file exists with different content.
	FileMismatch ChangeKind = "file-mismatch"
	// MissingFile means a single file is absent from the target.
	MissingFile ChangeKind = "missing-file"
)

// ChangeRecord is one remediation instruction produced by the diff engine.
//
// Dir means "copy From as a whole subtree into To"; All means "copy every
// file directly inside From into To"; otherwise From and To are single files.
type ChangeRecord struct {
	From string     `json:"from" yaml:"from"`
	To   string     `json:"to" yaml:"to"`
	Kind ChangeKind `json:"kind" yaml:"kind"`
	Dir  bool       `json:"dir,omitempty" yaml:"dir,omitempty"`
	All  bool       `json:"all,omitempty" yaml:"all,omitempty"`
	// Name is the directory or file name the record is about.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Change is delivered to a ChangeFunc for every emitted record.
type Change struct {
	Path string
	Name string
	Kind ChangeKind
}

// ChangeFunc observes emitted change records.
type ChangeFunc func(Change)
