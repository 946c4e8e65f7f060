// Package cli wires the studio service to a command line front end.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hack-pad/hackpadfs"
	hackpados "github.com/hack-pad/hackpadfs/os"
	"github.com/joho/godotenv"

	"devstudio/internal/ledger"
	"devstudio/internal/studio"
	"devstudio/pkg/diff"
	"devstudio/pkg/store"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headStyle = lipgloss.NewStyle().Bold(true)
)

const usage = `Usage: devstudio <command> [flags]

Commands:
  apply    apply a unified diff to files under the workspace root
  verify   check that every file a diff targets exists
  backup   write timestamped backups of the given files
  diff     generate a unified diff between two files

Environment:
  DEVSTUDIO_ROOT       workspace root (default ".")
  DEVSTUDIO_LEDGER     sqlite file recording applied patches (optional)
  DEVSTUDIO_LOG_LEVEL  DEBUG, INFO, WARN or ERROR (default WARN)
`

// Run executes the devstudio command line using the provided arguments.
// It returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "apply":
		return runApply(ctx, args[1:], stdout, stderr)
	case "verify":
		return runVerify(ctx, args[1:], stdout, stderr)
	case "backup":
		return runBackup(ctx, args[1:], stdout, stderr)
	case "diff":
		return runDiff(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		fmt.Fprint(stderr, usage)
		return 2
	}
}

func runApply(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("devstudio apply", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	root := flagSet.String("root", envDefault("DEVSTUDIO_ROOT", "."), "workspace root the diff paths are relative to")
	diffPath := flagSet.String("f", "", "read the diff from this file instead of stdin")
	strict := flagSet.Bool("strict", false, "reject hunks whose context lines do not match the file")
	backup := flagSet.Bool("backup", false, "back up each target file before applying")
	ledgerPath := flagSet.String("ledger", os.Getenv("DEVSTUDIO_LEDGER"), "sqlite file recording applied patches")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	diffText, err := readDiffInput(*diffPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read diff: %v\n", err)
		return 1
	}

	fileStore, err := openStore(*root)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open workspace root: %v\n", err)
		return 1
	}

	opts := studio.Options{
		Store:             fileStore,
		Logger:            newLogger(stderr),
		VerifyContext:     *strict,
		BackupBeforeApply: *backup,
	}
	if *ledgerPath != "" {
		l, err := ledger.Open(*ledgerPath)
		if err != nil {
			fmt.Fprintf(stderr, "failed to open ledger: %v\n", err)
			return 1
		}
		defer l.Close()
		opts.Ledger = l
	}

	svc, err := studio.NewService(opts)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create service: %v\n", err)
		return 1
	}

	report, err := svc.ApplyDiff(ctx, "cli", diffText)
	if err != nil {
		fmt.Fprintf(stderr, "apply failed: %v\n", err)
		return 1
	}

	printReport(stdout, report)
	if !report.Success {
		return 1
	}
	return 0
}

func runVerify(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("devstudio verify", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	root := flagSet.String("root", envDefault("DEVSTUDIO_ROOT", "."), "workspace root the diff paths are relative to")
	diffPath := flagSet.String("f", "", "read the diff from this file instead of stdin")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	diffText, err := readDiffInput(*diffPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read diff: %v\n", err)
		return 1
	}

	fileStore, err := openStore(*root)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open workspace root: %v\n", err)
		return 1
	}

	verification := diff.Verify(ctx, fileStore, diffText)
	if verification.Valid {
		fmt.Fprintln(stdout, okStyle.Render("✓")+" every target file exists")
		return 0
	}
	for _, msg := range verification.Errors {
		fmt.Fprintln(stdout, failStyle.Render("✗")+" "+msg)
	}
	return 1
}

func runBackup(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("devstudio backup", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	root := flagSet.String("root", envDefault("DEVSTUDIO_ROOT", "."), "workspace root the file paths are relative to")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}
	if flagSet.NArg() == 0 {
		fmt.Fprintln(stderr, "backup requires at least one file path")
		return 2
	}

	fileStore, err := openStore(*root)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open workspace root: %v\n", err)
		return 1
	}

	for _, path := range flagSet.Args() {
		backupPath, err := diff.Backup(ctx, fileStore, filepath.ToSlash(path))
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, backupPath)
	}
	return 0
}

func runDiff(args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("devstudio diff", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	contextLines := flagSet.Int("context", diff.DefaultContextLines, "context lines around each change")
	label := flagSet.String("label", "", "path recorded in the diff header (defaults to the new file)")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}
	if flagSet.NArg() != 2 {
		fmt.Fprintln(stderr, "diff requires exactly two file paths: old new")
		return 2
	}

	oldText, err := readOSFile(flagSet.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "failed to read %s: %v\n", flagSet.Arg(0), err)
		return 1
	}
	newText, err := readOSFile(flagSet.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "failed to read %s: %v\n", flagSet.Arg(1), err)
		return 1
	}

	path := *label
	if path == "" {
		path = filepath.ToSlash(flagSet.Arg(1))
	}
	fmt.Fprint(stdout, diff.Generate(oldText, newText, path, *contextLines))
	return 0
}

// openStore roots a FileStore at the given OS directory.
func openStore(root string) (store.FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	osfs := hackpados.NewFS()
	fsPath, err := osfs.FromOSPath(abs)
	if err != nil {
		return nil, err
	}
	sub, err := osfs.Sub(fsPath)
	if err != nil {
		return nil, err
	}
	return store.NewFS(sub), nil
}

func readOSFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	osfs := hackpados.NewFS()
	fsPath, err := osfs.FromOSPath(abs)
	if err != nil {
		return "", err
	}
	data, err := hackpadfs.ReadFile(osfs, fsPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readDiffInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	return readOSFile(path)
}

func newLogger(stderr io.Writer) studio.Logger {
	level := studio.LogLevel(strings.ToUpper(envDefault("DEVSTUDIO_LOG_LEVEL", "WARN")))
	return studio.NewStdLogger(level, stderr)
}

func printReport(w io.Writer, report *diff.Report) {
	if report.Success {
		fmt.Fprintln(w, headStyle.Render("Patch applied successfully."))
	} else {
		fmt.Fprintln(w, headStyle.Render("Patch applied with errors."))
	}
	for _, file := range report.AppliedFiles {
		fmt.Fprintln(w, okStyle.Render("✓")+" "+file)
	}
	for _, msg := range report.Errors {
		fmt.Fprintln(w, failStyle.Render("✗")+" "+msg)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
