package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/workermeta/internal/shell/output"
	"github.com/artpar/workermeta/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Test Helpers
// =============================================================================

const projectTOML = `
name = "api"
main = "src/index.ts"
compatibility_date = "2024-09-23"
routes = ["example.com/*", { pattern = "api.example.com/*", zone_id = "z1" }]

[vars]
DEBUG = "true"

[[kv_namespaces]]
binding = "KV"
id = "abc"

[[migrations]]
tag = "v1"
new_classes = ["Counter"]

[[migrations]]
tag = "v2"
`

func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func readResult(t *testing.T, path string) map[string]any {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal(content, &result))
	return result
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// =============================================================================
// Convert Command Tests
// =============================================================================

func TestRun_ConvertsProject(t *testing.T) {
	dir := newProject(t, map[string]string{
		"wrangler.toml": projectTOML,
		".env":          "DEBUG=false\nTOKEN=secret\n",
	})

	code, stdout, stderr := runCLI(t, "v1\n", "-dir", dir)

	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Found config: wrangler.toml")
	assert.Contains(t, stdout, "Found 2 environment variables")
	assert.Contains(t, stdout, "Enter migration_tag: ")
	assert.Contains(t, stdout, `Generated 2 routes for worker "api"`)
	assert.Contains(t, stdout, "Generated 3 bindings")
	assert.Contains(t, stdout, "Entry module: src/index.ts")

	result := readResult(t, filepath.Join(dir, "metadata.json"))
	assert.Equal(t, "api", result["scriptName"])
	assert.Equal(t, "src/index.ts", result["mainModule"])

	md := result["metadata"].(map[string]any)
	migrations := md["migrations"].(map[string]any)
	assert.Equal(t, "v1", migrations["old_tag"])
	assert.Equal(t, "v2", migrations["new_tag"])

	bindings := md["bindings"].([]any)
	require.Len(t, bindings, 3)
	assert.Equal(t, map[string]any{"name": "DEBUG", "type": "plain_text", "text": "false"}, bindings[0])
	assert.Equal(t, map[string]any{"name": "TOKEN", "type": "plain_text", "text": "secret"}, bindings[1])
	assert.Equal(t, map[string]any{"name": "KV", "type": "kv_namespace", "namespace_id": "abc"}, bindings[2])
}

func TestRun_TagFlagSkipsPrompt(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.toml": projectTOML})

	code, stdout, stderr := runCLI(t, "", "-dir", dir, "-tag", "v2")

	require.Equal(t, ExitSuccess, code, stderr)
	assert.NotContains(t, stdout, "Enter migration_tag")
	assert.Contains(t, stdout, "No environment files found or empty")

	result := readResult(t, filepath.Join(dir, "metadata.json"))
	migrations := result["metadata"].(map[string]any)["migrations"].(map[string]any)
	assert.Equal(t, "v2", migrations["old_tag"])
	assert.Empty(t, migrations["steps"])
}

func TestRun_NoPromptAppliesAllMigrations(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.json": `{"name": "api", "migrations": [{"tag": "v1"}]}`})

	code, _, stderr := runCLI(t, "", "-dir", dir, "-no-prompt")

	require.Equal(t, ExitSuccess, code, stderr)
	result := readResult(t, filepath.Join(dir, "metadata.json"))
	migrations := result["metadata"].(map[string]any)["migrations"].(map[string]any)
	assert.NotContains(t, migrations, "old_tag")
	assert.Len(t, migrations["steps"], 1)
}

func TestRun_YAMLOutput(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.toml": projectTOML})
	out := filepath.Join(t.TempDir(), "meta.yaml")

	code, _, stderr := runCLI(t, "", "-dir", dir, "-no-prompt", "-format", "yaml", "-out", out)

	require.Equal(t, ExitSuccess, code, stderr)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, yaml.Unmarshal(content, &result))
	assert.Equal(t, "api", result["scriptName"])
}

func TestRun_ExplicitWranglerPath(t *testing.T) {
	dir := newProject(t, map[string]string{"custom.jsonc": `{"name": "custom", // comment
	}`})

	code, stdout, stderr := runCLI(t, "", "-dir", dir, "-wrangler", filepath.Join(dir, "custom.jsonc"), "-no-prompt")

	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, `Generated 0 routes for worker "custom"`)
	assert.NotContains(t, stdout, "bindings")
	assert.NotContains(t, stdout, "Entry module")
}

func TestRun_ConfigNotFound(t *testing.T) {
	code, _, stderr := runCLI(t, "", "-dir", t.TempDir(), "-no-prompt")

	assert.Equal(t, ExitLoadError, code)
	assert.Contains(t, stderr, "no wrangler config file found")
}

func TestRun_ParseError(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.toml": "name = "})

	code, _, _ := runCLI(t, "", "-dir", dir, "-no-prompt")

	assert.Equal(t, ExitLoadError, code)
}

func TestRun_StrictRejectsInvalidConfig(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.json": `{"name": "api", "services": [{"binding": "AUTH"}]}`})

	code, _, stderr := runCLI(t, "", "-dir", dir, "-no-prompt", "-strict")

	assert.Equal(t, ExitConvertError, code)
	assert.Contains(t, stderr, "services[0].service")
	assert.NoFileExists(t, filepath.Join(dir, "metadata.json"))
}

func TestRun_OutputError(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.json": `{"name": "api"}`})

	code, _, _ := runCLI(t, "", "-dir", dir, "-no-prompt", "-out", filepath.Join(dir, "missing", "out.json"))

	assert.Equal(t, ExitOutputError, code)
}

func TestRun_UnknownFormat(t *testing.T) {
	code, _, stderr := runCLI(t, "", "-format", "xml")

	assert.Equal(t, ExitConfigError, code)
	assert.Contains(t, stderr, "unknown output format")
}

func TestRun_BadFlag(t *testing.T) {
	code, _, _ := runCLI(t, "", "-nope")

	assert.Equal(t, ExitConfigError, code)
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "-version")

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "workermeta dev")
}

// =============================================================================
// History Tests
// =============================================================================

func TestRun_HistoryDefaultsPromptToLastTag(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.toml": projectTOML})
	dsn := filepath.Join(t.TempDir(), "history.db")
	t.Setenv("WORKERMETA_HISTORY_DSN", dsn)

	// First run records new_tag v2
	var stdout, stderr bytes.Buffer
	code := run([]string{"-dir", dir, "-history", "-tag", ""}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stderr.String(), "migration tag advanced")

	// Second run offers v2 as the default and an empty answer accepts it
	stdout.Reset()
	stderr.Reset()
	code = run([]string{"-dir", dir, "-history"}, strings.NewReader("\n"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "Enter migration_tag [v2]: ")
	assert.NotContains(t, stderr.String(), "migration tag advanced")

	result := readResult(t, filepath.Join(dir, "metadata.json"))
	migrations := result["metadata"].(map[string]any)["migrations"].(map[string]any)
	assert.Equal(t, "v2", migrations["old_tag"])
	assert.Empty(t, migrations["steps"])

	s, err := store.NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer s.Close()
	list, err := s.ListConversions(context.Background(), "api", store.DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPipeline_Run(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.toml": projectTOML})
	out := filepath.Join(dir, "metadata.json")

	p := NewPipeline(nil, strings.NewReader(""), io.Discard)
	result, err := p.Run(context.Background(), ConvertOptions{
		Dir:     dir,
		OutPath: out,
		Format:  output.FormatJSON,
	})

	require.NoError(t, err)
	assert.Equal(t, "api", result.ScriptName)
	assert.Equal(t, 2, result.RouteCount())
	assert.FileExists(t, out)
}

func TestPipeline_PromptEOF(t *testing.T) {
	dir := newProject(t, map[string]string{"wrangler.toml": projectTOML})

	p := NewPipeline(nil, strings.NewReader(""), io.Discard)
	_, err := p.Run(context.Background(), ConvertOptions{
		Dir:     dir,
		OutPath: filepath.Join(dir, "metadata.json"),
		Format:  output.FormatJSON,
		Prompt:  true,
	})

	require.Error(t, err)
	cErr, ok := err.(*CommandError)
	require.True(t, ok)
	assert.Equal(t, ExitLoadError, cErr.ExitCode)
	assert.Equal(t, "PromptMigrationTag", cErr.Op)
}
