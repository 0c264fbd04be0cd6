package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/roml/parse"
	"github.com/robbyt/roml/parse/roml"
	"github.com/robbyt/roml/pkg"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

const scenario = "~ROML~\n# ~PRIME~\nname=Robert\n^age&7\n"

func TestEncodeCmd(t *testing.T) {
	out, _, err := run(t, `{"name": "Robert", "age": 7}`, "encode", "-f", "json")
	require.NoError(t, err)
	assert.Equal(t, scenario, out)

	out, _, err = run(t, "name: Robert\nage: 7\n", "encode", "--format", "YAML")
	require.NoError(t, err)
	assert.Equal(t, scenario, out)

	_, _, err = run(t, "{}", "encode", "-f", "xml")
	assert.ErrorIs(t, err, parse.ErrUnknownFormat)

	_, _, err = run(t, "{", "encode")
	assert.ErrorIs(t, err, parse.ErrInvalidInput)
}

func TestDecodeCmd(t *testing.T) {
	out, _, err := run(t, scenario, "decode")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"Robert\",\n  \"age\": 7\n}\n", out)

	out, logs, err := run(t, "~ROML~\n^x&4\n", "decode", "-f", "yaml")
	require.NoError(t, err, "issues are logged, not fatal")
	assert.Equal(t, "x: 4\n", out)
	assert.Contains(t, logs, "prime mismatch")
}

func TestTOMLCmd(t *testing.T) {
	out, _, err := run(t, "name = \"Robert\"\nage = 7\n", "encode", "-f", "toml")
	require.NoError(t, err)
	assert.Equal(t, scenario, out)

	out, _, err = run(t, scenario, "decode", "-f", "toml")
	require.NoError(t, err)
	assert.Equal(t, "name = \"Robert\"\nage = 7\n", out)
}

func TestCheckCmd(t *testing.T) {
	out, _, err := run(t, scenario, "check")
	require.NoError(t, err)
	assert.Equal(t, "ok: 1 prime value(s)\n", out)

	out, _, err = run(t, "~ROML~\n# ~PRIME~\nx:4\n", "check")
	assert.ErrorIs(t, err, roml.ErrInvalidDocument)
	assert.Contains(t, out, "declares ~PRIME~ but contains no prime-prefixed keys")
}

func TestFilesAndCompression(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	doc := filepath.Join(dir, "doc.roml.zst")
	back := filepath.Join(dir, "back.msgpack")
	require.NoError(t, os.WriteFile(in, []byte("b: [1, 2, 3]\na: {deep: true}\n"), 0o644))

	_, logs, err := run(t, "", "-v", "encode", "-i", in, "-o", doc, "--compress")
	require.NoError(t, err)
	assert.Contains(t, logs, "level=DEBUG")

	raw, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.True(t, pkg.IsCompressed(raw))

	_, _, err = run(t, "", "decode", "-i", doc, "-o", back)
	require.NoError(t, err)

	data, err := os.ReadFile(back)
	require.NoError(t, err)
	v, err := parse.MsgPack.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,2,3],"a":{"deep":true}}`, v.String())

	_, _, err = run(t, "", "check", "-i", filepath.Join(dir, "missing.roml"))
	assert.ErrorIs(t, err, pkg.ErrInputNotFound)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "Roml "+version+"\n", out)
}
