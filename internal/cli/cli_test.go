package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/glass"
)

type harness struct {
	t    *testing.T
	path string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, path: filepath.Join(t.TempDir(), "glass.db")}
}

// run executes glass against the harness's bolt file.
func (h *harness) run(stdin string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--backend", "bolt", "--bolt-path", h.path}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func (h *harness) ok(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) insert(modJSON string) string {
	h.t.Helper()
	return strings.TrimSpace(h.ok(modJSON, "insert"))
}

func TestInsertAndGet(t *testing.T) {
	h := newHarness(t)
	id := h.insert(`{"name":"Example Mod","version":"0.1.0","item_type":"mod","tags":["test"]}`)
	_, err := glass.ParseID(id)
	require.NoError(t, err)

	out := h.ok("", "get", id)
	assert.Contains(t, out, "ID:           "+id+"\n")
	assert.Contains(t, out, "Name:         Example Mod\n")
	assert.Contains(t, out, "Author:       N/A\n")
	assert.Contains(t, out, "Tags:         test\n")

	out = h.ok("", "--format", "json", "get", id)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID  string `json:"id"`
			Mod struct {
				Name     string `json:"name"`
				ItemType string `json:"item_type"`
			} `json:"mod"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, id, resp.Data.ID)
	assert.Equal(t, "Example Mod", resp.Data.Mod.Name)
	assert.Equal(t, "mod", resp.Data.Mod.ItemType)

	out = h.ok("", "fields", id)
	assert.Equal(t, "name: Example Mod\nversion: 0.1.0\nitem_type: mod\ntags: [\"test\"]\n", out)
}

func TestInsertWithIDFromFile(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "mod.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"name":"Lib","item_type":"lib"}`), 0o644))

	const id = "6ba7b8109dad11d180b400c04fd430c8"
	out := h.ok("", "insert", "--id", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", file)
	assert.Equal(t, id+"\n", out)
	assert.Contains(t, h.ok("", "get", id), "Type:         lib\n")

	_, err := h.run("", "insert", "--id", "00000000000000000000000000000000", file)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestListAndPages(t *testing.T) {
	h := newHarness(t)
	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		ids = append(ids, h.insert(`{"name":"`+name+`","version":"1"}`))
	}

	out := h.ok("", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, ids[i]), line)
	}

	out = h.ok("", "--page-size", "2", "list", "--page", "1")
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.NotContains(t, out, "(end)")

	out = h.ok("", "--page-size", "2", "list", "--page", "2")
	assert.Contains(t, out, ids[2])
	assert.True(t, strings.HasSuffix(out, "(end)\n"))

	out = h.ok("", "--format", "json", "--page-size", "2", "list", "-p", "2")
	var resp struct {
		Data listView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.End)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, ids[2], resp.Data.Entries[0].ID.String())

	_, err := h.run("", "list", "--page", "0")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, glass.ErrInvalidPage)

	assert.Equal(t, "3\n", h.ok("", "count"))
	assert.Equal(t, ids[0]+"\n", h.ok("", "first"))
	assert.Equal(t, ids[2]+"\n", h.ok("", "last"))
}

func TestEditRemoveBump(t *testing.T) {
	h := newHarness(t)
	a := h.insert(`{"name":"A"}`)
	b := h.insert(`{"name":"B"}`)

	h.ok("", "edit", a, "name=Renamed", "version=2.0")
	out := h.ok("", "get", a)
	assert.Contains(t, out, "Name:         Renamed\n")
	assert.Contains(t, out, "Version:      2.0\n")

	_, err := h.run("", "edit", a, "downloads=5")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, glass.ErrUnknownField)

	_, err = h.run("", "edit", a, "noequals")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	assert.Equal(t, "11\n", h.ok("", "bump", a, "10"))
	assert.Equal(t, a+"\n", h.ok("", "last"))
	assert.Equal(t, "-9\n", h.ok("", "bump", a, "--", "-20"))
	assert.Equal(t, a+"\n", h.ok("", "first"))

	_, err = h.run("", "bump", a, "lots")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	h.ok("", "remove", a)
	assert.Equal(t, "1\n", h.ok("", "count"))
	assert.Equal(t, b+"\n", h.ok("", "first"))

	_, err = h.run("", "get", a)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, glass.ErrNotFound)

	h.ok("", "remove", b)
	assert.Equal(t, glass.NilID.String()+"\n", h.ok("", "first"))
}

func TestImport(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "mods.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"}]`), 0o644))

	out := h.ok("", "import", "--jobs", "1", file)
	ids := strings.Fields(out)
	require.Len(t, ids, 4)
	assert.Equal(t, "4\n", h.ok("", "count"))
	assert.Equal(t, ids[0]+"\n", h.ok("", "first"))
	assert.Equal(t, ids[3]+"\n", h.ok("", "last"))

	out = h.ok(`[{"name":"E"},{"name":"F"}]`, "import", "-")
	assert.Len(t, strings.Fields(out), 2)
	assert.Equal(t, "6\n", h.ok("", "count"))

	_, err := h.run("[]", "import", "--jobs", "0", "-")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	_, err = h.run("{", "import", "-")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad id", []string{"get", "xyz"}, ExitCommandError},
		{"bad format", []string{"--format", "xml", "count"}, ExitCommandError},
		{"bad codec", []string{"--codec", "xml", "count"}, ExitCommandError},
		{"bad backend", []string{"--backend", "etcd", "count"}, ExitCommandError},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "count"}, ExitCommandError},
		{"bad input", []string{"insert", filepath.Join(t.TempDir(), "none.json")}, ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run("", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestRedisUnavailable(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--host", "127.0.0.1", "--port", "1", "count"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, glass.ErrBackendUnavailable)
}

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "redis.yaml")
	require.NoError(t, os.WriteFile(file, []byte("host: cache.internal\nport: 6380\ndb: 4\n"), 0o644))

	opts := &RootOptions{Config: file}
	opts.Redis.Port = 7000
	cmd := NewRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "7000"}))
	require.NoError(t, opts.loadConfig(cmd))
	assert.Equal(t, "cache.internal", opts.Redis.Host)
	assert.Equal(t, 7000, opts.Redis.Port, "flags override the file")
	assert.Equal(t, 4, opts.Redis.DB)
}

func TestOutputFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	out := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, out.Error(WrapExitError(ExitCommandError, "invalid id", glass.ErrMalformedIdentifier)))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ExitCommandError, resp.Error.Code)
	assert.Equal(t, "invalid id: malformed identifier", resp.Error.Message)

	buf.Reset()
	out.Format = "text"
	require.NoError(t, out.Error(NewExitError(ExitFailure, "boom")))
	assert.Equal(t, "Error: boom\n", buf.String())

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(storeError("x", glass.ErrInvalidPage)))
	assert.Equal(t, ExitFailure, GetExitCode(storeError("x", glass.ErrBackendUnavailable)))
}
