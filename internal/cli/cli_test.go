package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

const insertDiff = "--- a/notes.txt\n" +
	"+++ b/notes.txt\n" +
	"@@ -1,2 +1,3 @@\n" +
	" first line\n" +
	"+inserted line\n" +
	" second line\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunWithoutCommandPrintsUsage(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := Run(context.Background(), nil, &out, &errBuf)
	require.Equal(t, 2, code)
	require.Contains(t, errBuf.String(), "Usage: devstudio")
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{"bogus"}, &out, &errBuf)
	require.Equal(t, 2, code)
	require.Contains(t, errBuf.String(), `unknown command "bogus"`)
}

func TestRunApplyFromDiffFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "first line\nsecond line\n")
	diffFile := filepath.Join(t.TempDir(), "change.diff")
	writeFile(t, diffFile, insertDiff)

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{"apply", "-root", root, "-f", diffFile}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())
	require.Contains(t, out.String(), "Patch applied successfully.")
	require.Contains(t, out.String(), "notes.txt")

	content, err := os.ReadFile(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	require.Equal(t, "first line\ninserted line\nsecond line\n", string(content))
}

func TestRunApplyMissingFileFails(t *testing.T) {
	root := t.TempDir()
	diffFile := filepath.Join(t.TempDir(), "change.diff")
	writeFile(t, diffFile, insertDiff)

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{"apply", "-root", root, "-f", diffFile}, &out, &errBuf)
	require.Equal(t, 1, code)
	require.Contains(t, out.String(), "Patch applied with errors.")
}

func TestRunApplyWithLedger(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "first line\nsecond line\n")
	diffFile := filepath.Join(t.TempDir(), "change.diff")
	writeFile(t, diffFile, insertDiff)
	ledgerFile := filepath.Join(t.TempDir(), "patches.db")

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{
		"apply", "-root", root, "-f", diffFile, "-ledger", ledgerFile,
	}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())

	info, err := os.Stat(ledgerFile)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRunVerify(t *testing.T) {
	root := t.TempDir()
	diffFile := filepath.Join(t.TempDir(), "change.diff")
	writeFile(t, diffFile, insertDiff)

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{"verify", "-root", root, "-f", diffFile}, &out, &errBuf)
	require.Equal(t, 1, code)
	require.Contains(t, out.String(), "File not found: notes.txt")

	writeFile(t, filepath.Join(root, "notes.txt"), "first line\nsecond line\n")
	out.Reset()
	code = Run(context.Background(), []string{"verify", "-root", root, "-f", diffFile}, &out, &errBuf)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "every target file exists")
}

func TestRunBackup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "first line\n")

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{"backup", "-root", root, "notes.txt"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())

	pattern := regexp.MustCompile(`notes\.txt\.backup\.\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z`)
	backupPath := pattern.FindString(out.String())
	require.NotEmpty(t, backupPath)

	content, err := os.ReadFile(filepath.Join(root, backupPath))
	require.NoError(t, err)
	require.Equal(t, "first line\n", string(content))
}

func TestRunDiffGeneratesUnifiedDiff(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.txt")
	newFile := filepath.Join(dir, "new.txt")
	writeFile(t, oldFile, "first line\nsecond line")
	writeFile(t, newFile, "first line\ninserted line\nsecond line")

	var out, errBuf bytes.Buffer
	code := Run(context.Background(), []string{"diff", "-label", "notes.txt", oldFile, newFile}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())
	require.Equal(t, insertDiff, out.String())
}
