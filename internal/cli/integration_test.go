package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the command line from source with a fresh config in dir.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(dir, ".jsonshaper.yml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  output_dir: "+dir+"\n"), 0o644))
	}

	cmd := exec.Command("go", append([]string{"run", "../../main.go", "--config", cfgPath}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_FileInputFields tests listing fields from a file
func TestCLI_FileInputFields(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "person.json")
	jsonContent := `{
		"name": "John Doe",
		"address": {"street": "123 Main St", "city": "Anytown"},
		"phones": [{"type": "home", "number": "555-1234"}, {"type": "work"}]
	}`
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0o644))

	out, stderr, err := runCLI(t, tempDir, "", "fields", "-i", jsonFile)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "address.city\naddress.street\nname\nphones.number\nphones.type\n", out)
}

// TestCLI_StdinPreview tests flattening piped input
func TestCLI_StdinPreview(t *testing.T) {
	tempDir := t.TempDir()
	jsonContent := `[{"name": "Jane", "age": 25, "langs": ["go", "sql"]}, {"name": "Raj", "age": 31}]`

	out, stderr, err := runCLI(t, tempDir, jsonContent, "preview", "-f", "name", "-f", "langs=Languages", "-n", "5")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	lines := strings.SplitN(out, "\n", 2)
	require.Len(t, lines, 2)
	assert.Equal(t, "Documents: 2", lines[0])
	assert.JSONEq(t, `[{"name": "Jane", "Languages": "go, sql"}, {"name": "Raj", "Languages": null}]`, lines[1])
}

// TestCLI_ExportSQLite tests writing a sqlite export
func TestCLI_ExportSQLite(t *testing.T) {
	tempDir := t.TempDir()
	jsonContent := `{"rows": [{"id": 1}, {"id": 2}]}`

	out, stderr, err := runCLI(t, tempDir, jsonContent, "export", "--format", "sqlite", "-o", "ids")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, out, "Export successful! Saved to ")
	assert.FileExists(t, filepath.Join(tempDir, "ids.db"))
}

// TestCLI_NamingStyle tests the global style flag
func TestCLI_NamingStyle(t *testing.T) {
	tempDir := t.TempDir()
	jsonContent := `[{"firstName": "Ana", "last_name": "Lima"}]`

	_, stderr, err := runCLI(t, tempDir, jsonContent, "--style", "snake", "export", "--format", "json")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	data, err := os.ReadFile(filepath.Join(tempDir, "output.json"))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0]["first_name"])
	assert.Equal(t, "Lima", rows[0]["last_name"])
}

// TestCLI_InvalidJSON tests the CLI with invalid JSON input
func TestCLI_InvalidJSON(t *testing.T) {
	tempDir := t.TempDir()

	_, stderr, err := runCLI(t, tempDir, `{"name": "Broken",`, "fields")
	assert.Error(t, err, "CLI should fail with invalid JSON")
	assert.Contains(t, stderr, "Error parsing JSON")
}

// TestCLI_MissingFile tests a missing input file
func TestCLI_MissingFile(t *testing.T) {
	tempDir := t.TempDir()

	_, stderr, err := runCLI(t, tempDir, "", "fields", "-i", filepath.Join(tempDir, "nope.json"))
	assert.Error(t, err)
	assert.Contains(t, stderr, "not found")
}

// TestCLI_Version tests the version command
func TestCLI_Version(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jsonshaper version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)

	help := string(output)
	for _, command := range []string{"fields", "roots", "tree", "count", "profile", "preview", "export", "join-keys", "merge", "mcp"} {
		assert.Contains(t, help, command)
	}
}
