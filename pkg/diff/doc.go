// Package diff parses unified-diff text and applies it to files behind a
// store.FileStore collaborator.
//
// The engine is deliberately small: it understands "--- a/<path>" file
// sections and "@@ -start,count +start,count @@" hunks, applies hunks by
// original-file line arithmetic, and reports per-file success instead of
// aborting a batch on the first failure. Context verification is opt-in;
// by default hunks are trusted to match the content they were computed from.
package diff
