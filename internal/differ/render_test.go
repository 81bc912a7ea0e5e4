package differ

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
)

var sampleChanges = []fhtypes.ChangeRecord{
	{From: "./b", To: "/dst/b", Kind: fhtypes.MissingSubDir, Dir: true, Name: "b"},
	{From: ".", To: "/dst/", Kind: fhtypes.MissingFiles, All: true},
	{From: "./c/x.txt", To: "/dst/c/x.txt", Kind: fhtypes.FileMismatch, Name: "x.txt"},
	{From: "./c/y.txt", To: "/dst/c/y.txt", Kind: fhtypes.MissingFile, Name: "y.txt"},
}

func TestRender_Bash(t *testing.T) {
	out, err := Render(sampleChanges, RenderBash)
	require.NoError(t, err)
	assert.Equal(t, `cp "./b" "/dst/b" -r -f
cp "."/* "/dst/" -f
cp "./c/x.txt" "/dst/c/x.txt" -f
cp "./c/y.txt" "/dst/c/y.txt" -f`, out)
}

func TestRender_Cmd(t *testing.T) {
	out, err := Render(sampleChanges, RenderCmd)
	require.NoError(t, err)
	assert.Equal(t, `xcopy ".\b" "\dst\b" /S/I/Q/Y
xcopy ".\*.*" "\dst\" /Q/Y
xcopy ".\c\x.txt" "\dst\c\x.txt" /Q/Y
xcopy ".\c\y.txt" "\dst\c\y.txt" /Q/Y`, out)
}

func TestRender_Report(t *testing.T) {
	out, err := Render(sampleChanges, RenderReport)
	require.NoError(t, err)
	assert.Equal(t, `/dst misses b sub-dir.
/dst/ is empty and misses all files.
/dst/c contains a different x.txt file.
/dst/c misses y.txt file.`, out)
}

func TestRender_JSON(t *testing.T) {
	out, err := Render(sampleChanges, RenderJSON)
	require.NoError(t, err)

	var decoded []fhtypes.ChangeRecord
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, sampleChanges, decoded)
	assert.Contains(t, out, "\n    {\n        \"from\": \"./b\",")

	empty, err := Render(nil, RenderJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestRender_InvalidKind(t *testing.T) {
	_, err := Render(sampleChanges, "powershell")
	require.Error(t, err)
	assert.True(t, fherrors.HasCode(err, fherrors.CodeInvalidInput))
}

func TestParentOf(t *testing.T) {
	assert.Equal(t, "/dst", parentOf("/dst/b"))
	assert.Equal(t, "/", parentOf("/b"))
	assert.Equal(t, ".", parentOf("b"))
}
