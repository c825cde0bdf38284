package cli

// Test Plan for CLI commands:
// - parsePosition accepts offsets and 1-based LINE:COL and rejects bad input
// - dialectFor honours --dialect and falls back to the file globs
// - resolve prints the accepted element range as JSON
// - members lists LINE:COL, kind and name per member
// - members --watch prints the list again after the file changes
// - next and prev step through the scope
// - move --write swaps members in the file and reports the cursor
// - move --diff prints a unified diff instead of the JSON plan
// - sort --write orders class and object members by name
// - extract prints the extraction result without touching the file
// - a plan computed against stale file text is refused
// - version prints the dialects, or only the version with --short
//
// Commands share package-level flag variables, so these tests do not run
// in parallel.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// copyFixture copies a testdata file into a temp dir so --write tests can
// modify it.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "ts", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// testCommand returns a command with captured output and resets the
// shared flags.
func testCommand(t *testing.T) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	atFlag, toFlag, kindsFlag, nameFlag, dialectFlag = "0", "", "", "", ""
	writeFlag, diffFlag, descFlag, watchFlag, shortVersion = false, false, false, false, false

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func TestParsePosition(t *testing.T) {
	snap := document.NewSnapshot("ab\ncdef\n", syntax.TypeScript)

	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"4", 4, false},
		{"8", 8, false},
		{"2:3", 5, false},
		{"1:99", 2, false},
		{"-1", 0, true},
		{"9", 0, true},
		{"0:1", 0, true},
		{"2:0", 0, true},
		{"7:1", 0, true},
		{"x", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(snap, tt.arg)
		if tt.wantErr {
			assert.Error(t, err, tt.arg)
			continue
		}
		require.NoError(t, err, tt.arg)
		assert.Equal(t, tt.want, got, tt.arg)
	}
}

func TestDialectFor(t *testing.T) {
	testCommand(t)

	d, err := dialectFor("src/view.tsx")
	require.NoError(t, err)
	assert.Equal(t, syntax.TSX, d)

	d, err = dialectFor("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, syntax.TypeScript, d)

	dialectFlag = "js"
	d, err = dialectFor("src/view.tsx")
	require.NoError(t, err)
	assert.Equal(t, syntax.JavaScript, d)
	dialectFlag = ""
}

func TestResolve(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "13:17"
	kindsFlag = "function"

	require.NoError(t, runResolve(cmd, []string{path}))
	assert.Contains(t, stdout.String(), `"kind": "function"`)
	assert.Contains(t, stdout.String(), `"text": "export function sum(items: number[]) {`)
}

func TestResolve_MarkupInTSX(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "widgets.tsx")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	atFlag = strconv.Itoa(strings.Index(string(data), "Divider"))
	kindsFlag = "markup"

	require.NoError(t, runResolve(cmd, []string{path}))
	assert.Contains(t, stdout.String(), `"text": "<Divider />"`)
}

func TestMembers(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "4:5"

	require.NoError(t, runMembers(cmd, []string{path}))
	assert.Equal(t, "2:5\tfield\trunning\n4:5\tmethod\tstop\n8:5\tmethod\tstart\n", stdout.String())
}

// syncBuffer guards a buffer written by the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMembers_Watch(t *testing.T) {
	cmd, _, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "4:5"
	watchFlag = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.SetContext(ctx)
	out := &syncBuffer{}
	cmd.SetOut(out)

	done := make(chan error, 1)
	go func() { done <- runMembers(cmd, []string{path}) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "method\tstart") }, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	updated := strings.Replace(string(data), "start()", "launch()", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "method\tlaunch") }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("members --watch did not stop after cancel")
	}
}

func TestNextAndPrev(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "4:5"

	require.NoError(t, runNavigate(cmd, []string{path}, true))
	assert.Contains(t, stdout.String(), "method\tstart")

	stdout.Reset()
	require.NoError(t, runNavigate(cmd, []string{path}, false))
	assert.Contains(t, stdout.String(), "field\trunning")
}

func TestMove_Write(t *testing.T) {
	cmd, stdout, stderr := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "4:5"
	writeFlag = true

	require.NoError(t, runMove(cmd, []string{"down", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, "start()"), strings.Index(text, "stop()"))
	assert.Contains(t, stdout.String(), "applied 2 edit(s)")
	assert.Contains(t, stderr.String(), "cursor: 8:5")
}

func TestMove_PrintsPlanWithoutWrite(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	atFlag = "4:5"

	require.NoError(t, runMove(cmd, []string{"up", path}))
	assert.Contains(t, stdout.String(), `"edits"`)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestMove_Diff(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "4:5"
	diffFlag = true

	require.NoError(t, runMove(cmd, []string{"down", path}))
	out := stdout.String()
	assert.Contains(t, out, "@@ -4,")
	assert.Contains(t, out, "-    stop() {\n")
	assert.Contains(t, out, "+    start() {\n")
}

func TestMove_Boundary(t *testing.T) {
	cmd, _, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "8:5"

	err := runMove(cmd, []string{"down", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundary")

	assert.Error(t, runMove(cmd, []string{"sideways", path}))
}

func TestSort_Write(t *testing.T) {
	cmd, _, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "4:5"
	writeFlag = true

	require.NoError(t, runSort(cmd, []string{path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, "running ="), strings.Index(text, "start()"))
	assert.Less(t, strings.Index(text, "start()"), strings.Index(text, "stop()"))
}

func TestSort_ObjectLiteralInJavaScript(t *testing.T) {
	cmd, _, stderr := testCommand(t)
	path := copyFixture(t, "legacy.js")
	atFlag = "2:5"
	writeFlag = true

	require.NoError(t, runSort(cmd, []string{path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    alpha: 2,\n    mid: 3,\n    zeta: 1,\n")

	// A second sort finds nothing to do.
	require.NoError(t, runSort(cmd, []string{path}))
	assert.Contains(t, stderr.String(), "already sorted")
}

func TestExtract_PrintsResult(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	atFlag = "15:5"
	toFlag = "17:6"
	nameFlag = "accumulate"

	require.NoError(t, runExtract(cmd, []string{path}))
	out := stdout.String()
	assert.Contains(t, out, `"function_name": "accumulate"`)
	assert.Contains(t, out, `"return_type": "number"`)
}

func TestApplyPlan_RefusesStaleFile(t *testing.T) {
	cmd, _, _ := testCommand(t)
	path := copyFixture(t, "service.ts")
	snap, err := loadSnapshot(cmd, path)
	require.NoError(t, err)

	plan, err := document.NewPlanBuilder(snap).Replace(document.Range{Start: 0, End: 6}, "//").Build("test")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("changed\n"), 0644))

	err = applyPlan(cmd, path, snap, plan, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrStaleSnapshot)
}

func TestVersion(t *testing.T) {
	cmd, stdout, _ := testCommand(t)
	versionCmd.Run(cmd, nil)
	assert.Contains(t, stdout.String(), "cortex-refactor dev")
	assert.Contains(t, stdout.String(), "dialects: typescript, tsx, javascript")

	stdout.Reset()
	shortVersion = true
	versionCmd.Run(cmd, nil)
	assert.Equal(t, "dev\n", stdout.String())
}
