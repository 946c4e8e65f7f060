package store

import (
	"context"
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
)

func TestFSWriteCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	fsys, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS returned error: %v", err)
	}
	fs := NewFS(fsys)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "nested/deep/file.txt", "hello"); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	content, err := fs.ReadFile(ctx, "nested/deep/file.txt")
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if content != "hello" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestFSReadMissing(t *testing.T) {
	t.Parallel()

	fsys, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS returned error: %v", err)
	}
	if _, err := NewFS(fsys).ReadFile(context.Background(), "absent.txt"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFSRejectsEscapingPath(t *testing.T) {
	t.Parallel()

	fsys, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS returned error: %v", err)
	}
	if err := NewFS(fsys).WriteFile(context.Background(), "../outside.txt", "x"); err == nil {
		t.Fatalf("expected error for escaping path")
	}
}
