package differ

import (
	"encoding/json"
	"fmt"
	"strings"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
)

// RenderKind selects the output of Render.
type RenderKind string

const (
	// RenderBash emits one cp command per record.
	RenderBash RenderKind = "bash"
	// RenderCmd emits one xcopy command per record with Windows separators.
	RenderCmd RenderKind = "cmd"
	// RenderJSON emits the records as an indented JSON array.
	RenderJSON RenderKind = "json"
	// RenderReport emits one human-readable sentence per record.
	RenderReport RenderKind = "report"
)

// Render formats changes as a script, JSON document or report.
func Render(changes []fhtypes.ChangeRecord, kind RenderKind) (string, error) {
	switch kind {
	case RenderBash:
		return renderLines(changes, bashLine), nil
	case RenderCmd:
		return renderLines(changes, cmdLine), nil
	case RenderReport:
		return renderLines(changes, ReportLine), nil
	case RenderJSON:
		if changes == nil {
			changes = []fhtypes.ChangeRecord{}
		}
		data, err := json.MarshalIndent(changes, "", "    ")
		if err != nil {
			return "", fherrors.Wrap(err, fherrors.CodeInternal, "failed to encode changes")
		}
		return string(data), nil
	default:
		return "", fherrors.NewWithContext(fherrors.CodeInvalidInput, "invalid output kind",
			map[string]interface{}{"kind": string(kind)})
	}
}

func renderLines(changes []fhtypes.ChangeRecord, line func(fhtypes.ChangeRecord) string) string {
	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = line(c)
	}
	return strings.Join(lines, "\n")
}

func bashLine(c fhtypes.ChangeRecord) string {
	switch {
	case c.All:
		// The glob stays outside the quotes so the shell expands it.
		return fmt.Sprintf(`cp "%s"/* "%s" -f`, c.From, c.To)
	case c.Dir:
		return fmt.Sprintf(`cp "%s" "%s" -r -f`, c.From, c.To)
	default:
		return fmt.Sprintf(`cp "%s" "%s" -f`, c.From, c.To)
	}
}

func cmdLine(c fhtypes.ChangeRecord) string {
	from := strings.ReplaceAll(c.From, "/", `\`)
	to := strings.ReplaceAll(c.To, "/", `\`)
	switch {
	case c.All:
		return fmt.Sprintf(`xcopy "%s\*.*" "%s" /Q/Y`, from, to)
	case c.Dir:
		return fmt.Sprintf(`xcopy "%s" "%s" /S/I/Q/Y`, from, to)
	default:
		return fmt.Sprintf(`xcopy "%s" "%s" /Q/Y`, from, to)
	}
}

// ReportLine describes one record in a sentence.
func ReportLine(c fhtypes.ChangeRecord) string {
	switch c.Kind {
	case fhtypes.MissingSubDir:
		return fmt.Sprintf("%s misses %s sub-dir.", parentOf(c.To), c.Name)
	case fhtypes.MissingFiles:
		return fmt.Sprintf("%s is empty and misses all files.", c.To)
	case fhtypes.FileMismatch:
		return fmt.Sprintf("%s contains a different %s file.", parentOf(c.To), c.Name)
	case fhtypes.MissingFile:
		return fmt.Sprintf("%s misses %s file.", parentOf(c.To), c.Name)
	default:
		return fmt.Sprintf("%s: %s", c.Kind, c.To)
	}
}

// parentOf strips the last path element added by joinAnchor.
func parentOf(p string) string {
	i := strings.LastIndexAny(p, `/\`)
	switch {
	case i < 0:
		return "."
	case i == 0:
		return p[:1]
	default:
		return p[:i]
	}
}
