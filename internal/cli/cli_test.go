package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// runCLI executes one command against the json backend in projectDir.
func runCLI(t *testing.T, projectDir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	root := NewRootCommand("test", strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(append([]string{"--backend", "json", "--project-dir", projectDir}, args...))
	err := root.Execute()

	return out.String(), errOut.String(), err
}

// mustRun is runCLI that fails the test on error.
func mustRun(t *testing.T, projectDir string, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, projectDir, "", args...)
	require.NoError(t, err, "stderr: %s", errOut)
	return out
}

// listJSON returns the persisted listing via "ls -o json".
func listJSON(t *testing.T, projectDir string, filter string) listing {
	t.Helper()
	var l listing
	out := mustRun(t, projectDir, "ls", "-f", filter, "-o", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &l), "output: %s", out)
	return l
}

var addedRe = regexp.MustCompile(`^Added (\S+)  (.*)\n$`)

// addTask runs "add" and returns the short id it printed.
func addTask(t *testing.T, projectDir, text string) string {
	t.Helper()
	out := mustRun(t, projectDir, "add", text)
	m := addedRe.FindStringSubmatch(out)
	require.NotNil(t, m, "unexpected add output %q", out)
	return m[1]
}

// ---------------------------------------------------------------------------
// Task commands
// ---------------------------------------------------------------------------

func Test_CLI_Scenario(t *testing.T) {
	dir := t.TempDir()

	tridentID := addTask(t, dir, "Find trident")
	out := mustRun(t, dir, "add", "Feed", "seahorses")
	require.Regexp(t, addedRe, out)

	l := listJSON(t, dir, "all")
	require.Len(t, l.Tasks, 2)
	assert.Equal(t, "Feed seahorses", l.Tasks[0].Text)
	assert.Equal(t, "Find trident", l.Tasks[1].Text)

	out = mustRun(t, dir, "toggle", tridentID)
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Find trident")

	out = mustRun(t, dir, "stats")
	assert.Equal(t, "2 total, 1 active, 1 completed\n", out)

	out = mustRun(t, dir, "clear-completed")
	assert.Equal(t, "Cleared 1 completed task(s)\n", out)

	l = listJSON(t, dir, "all")
	require.Len(t, l.Tasks, 1)
	assert.Equal(t, "Feed seahorses", l.Tasks[0].Text)

	// The list lives in the project's .atlantis directory
	data, err := os.ReadFile(filepath.Join(dir, ".atlantis", "atlantis-todos.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Feed seahorses")
}

func Test_CLI_Add_Blank(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "add", "   ")

	assert.Equal(t, "Nothing to add: text is blank\n", out)
	assert.Empty(t, listJSON(t, dir, "all").Tasks)
}

func Test_CLI_EditAndRemove(t *testing.T) {
	dir := t.TempDir()
	id := addTask(t, dir, "Find trident")

	out := mustRun(t, dir, "edit", id, "Polish", "trident")
	assert.Contains(t, out, "Polish trident")

	out = mustRun(t, dir, "edit", id, "Polish trident")
	assert.Equal(t, "Unchanged\n", out)

	out = mustRun(t, dir, "rm", id)
	assert.Equal(t, fmt.Sprintf("Removed %s\n", id), out)

	out = mustRun(t, dir, "delete", id)
	assert.Equal(t, fmt.Sprintf("No task %s\n", id), out)
}

func Test_CLI_Toggle_Unknown(t *testing.T) {
	out := mustRun(t, t.TempDir(), "toggle", "nope")
	assert.Equal(t, "No task nope\n", out)
}

func Test_CLI_List_Text(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "ls")
	assert.Equal(t, "No tasks.\n0 total, 0 active, 0 completed\n", out)

	id := addTask(t, dir, "Find trident")
	out = mustRun(t, dir, "list")
	assert.Equal(t, fmt.Sprintf("[ ] %s  Find trident\n1 total, 1 active, 0 completed\n", id), out)

	out = mustRun(t, dir, "ls", "--filter", "completed")
	assert.True(t, strings.HasPrefix(out, "No tasks.\n"), "output %q", out)
}

func Test_CLI_List_YAML(t *testing.T) {
	dir := t.TempDir()
	addTask(t, dir, "Find trident")

	out := mustRun(t, dir, "ls", "-o", "yaml")

	var l listing
	require.NoError(t, yaml.Unmarshal([]byte(out), &l), "output: %s", out)
	require.Len(t, l.Tasks, 1)
	assert.Equal(t, "Find trident", l.Tasks[0].Text)
	assert.Equal(t, 1, l.Stats.Total)
	assert.Contains(t, out, "createdAt:")
}

func Test_CLI_Stats_JSON(t *testing.T) {
	dir := t.TempDir()
	addTask(t, dir, "a")

	out := mustRun(t, dir, "stats", "-o", "json")
	assert.JSONEq(t, `{"total":1,"active":1,"completed":0}`, out)
}

func Test_CLI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad filter", args: []string{"ls", "-f", "done"}, wantErr: "unknown filter"},
		{name: "bad output", args: []string{"stats", "-o", "xml"}, wantErr: "unknown output format"},
		{name: "edit needs text", args: []string{"edit", "abc"}, wantErr: "requires at least 2 arg(s)"},
		{name: "unknown backend", args: []string{"--backend", "redis", "stats"}, wantErr: "unknown storage backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, t.TempDir(), "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_CLI_Apply(t *testing.T) {
	dir := t.TempDir()
	input := `{"op":"add","text":"Find trident"}
{"op":"add","text":"Feed seahorses"}
{"op":"list","filter":"active"}
`
	out, errOut, err := runCLI(t, dir, input, "apply")
	require.NoError(t, err, "stderr: %s", errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var last struct {
		OK    bool           `json:"ok"`
		Tasks []storage.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.True(t, last.OK)
	assert.Len(t, last.Tasks, 2)

	// Changes are persisted for later invocations
	assert.Len(t, listJSON(t, dir, "all").Tasks, 2)
}

func Test_CLI_UnreadableStorageFailsFast(t *testing.T) {
	dir := t.TempDir()
	// A directory where the value file should be cannot be read
	valuePath := filepath.Join(dir, ".atlantis", "atlantis-todos.json")
	require.NoError(t, os.MkdirAll(valuePath, 0o755))

	out, _, err := runCLI(t, dir, "", "add", "Find trident")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load tasks")
	assert.Empty(t, out)

	info, err := os.Stat(valuePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "value path was overwritten")
}

func Test_CLI_Apply_DebugEchoesRequests(t *testing.T) {
	input := `{"op":"add","text":"Find trident"}` + "\n"

	_, errOut, err := runCLI(t, t.TempDir(), input, "apply")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "Decoded add request")

	_, errOut, err = runCLI(t, t.TempDir(), input, "--debug", "apply")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Decoded add request")
}

func Test_CLI_MCP_UsesCommandStreams(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}
{"jsonrpc":"2.0","id":2,"method":"tools/list"}
`
	out, errOut, err := runCLI(t, t.TempDir(), input, "mcp")
	require.NoError(t, err, "stderr: %s", errOut)

	var toolsResp struct {
		ID     int `json:"id"`
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		require.NoError(t, json.Unmarshal([]byte(line), &toolsResp), "line: %s", line)
		if toolsResp.ID == 2 {
			for _, tool := range toolsResp.Result.Tools {
				names = append(names, tool.Name)
			}
		}
	}
	assert.Contains(t, names, "add_task")
	assert.Contains(t, names, "task_stats")
}

func Test_Run_ExitCodes(t *testing.T) {
	var out, errOut bytes.Buffer

	code := Run("1.2.3", []string{"--version"}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "1.2.3")

	out.Reset()
	code = Run("1.2.3", []string{"no-such-command"}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "Error:")
}

// ---------------------------------------------------------------------------
// Output helpers
// ---------------------------------------------------------------------------

func Test_parseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]outputFormat{
		"":      formatText,
		"TEXT":  formatText,
		"json":  formatJSON,
		" yaml": formatYAML,
	} {
		got, err := parseFormat(in)
		require.NoError(t, err, "parseFormat(%q)", in)
		assert.Equal(t, want, got, "parseFormat(%q)", in)
	}

	_, err := parseFormat("csv")
	assert.Error(t, err)
}

func Test_formatTask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[ ] 12345678  open", formatTask(storage.Task{ID: "1234567890", Text: "open"}))
	assert.Equal(t, "[x] abc  done", formatTask(storage.Task{ID: "abc", Text: "done", Completed: true}))
}
