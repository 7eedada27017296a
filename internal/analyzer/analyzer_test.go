package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

func TestAnalyzeCountsLanguagesAndFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main")
	writeFile(t, dir, "internal/server.go", "package internal")
	writeFile(t, dir, "web/app.ts", "export {}")
	writeFile(t, dir, "README.md", "# Demo project")
	writeFile(t, dir, "node_modules/pkg/index.js", "ignored")
	writeFile(t, dir, ".git/config", "ignored")

	analysis, err := New(zap.NewNop()).Analyze(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.Languages["Go"] != 2 {
		t.Fatalf("expected 2 Go files, got %d", analysis.Languages["Go"])
	}
	if analysis.Languages["TypeScript"] != 1 {
		t.Fatalf("expected 1 TypeScript file, got %d", analysis.Languages["TypeScript"])
	}
	if _, ok := analysis.Languages["JavaScript"]; ok {
		t.Fatalf("node_modules content must be ignored")
	}

	// main.go, server.go, app.ts, README.md
	if analysis.FileCount != 4 {
		t.Fatalf("expected 4 files, got %d", analysis.FileCount)
	}

	if !strings.Contains(analysis.ReadmeContent, "Demo project") {
		t.Fatalf("expected README content, got %q", analysis.ReadmeContent)
	}

	if !strings.Contains(analysis.Summary, "primarily Go") {
		t.Fatalf("unexpected summary: %q", analysis.Summary)
	}
}

func TestAnalyzeDetectsTechnologies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo")
	writeFile(t, dir, "Dockerfile", "FROM scratch")
	writeFile(t, dir, "package.json", `{"dependencies":{"react":"^18.0.0"},"devDependencies":{"typescript":"^5.0.0"}}`)
	writeFile(t, dir, ".github/workflows/ci.yml", "on: push")

	analysis, err := New(zap.NewNop()).Analyze(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Docker", "GitHub Actions", "Go", "Node.js", "React", "TypeScript"}
	if len(analysis.Technologies) != len(want) {
		t.Fatalf("expected technologies %v, got %v", want, analysis.Technologies)
	}
	for i, tech := range want {
		if analysis.Technologies[i] != tech {
			t.Fatalf("expected technologies %v, got %v", want, analysis.Technologies)
		}
	}
}

func TestAnalyzeMissingDirectory(t *testing.T) {
	_, err := New(zap.NewNop()).Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestAnalyzeNonGitDirectoryHasNoCommits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main")

	analysis, err := New(zap.NewNop()).Analyze(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(analysis.RecentCommits) != 0 {
		t.Fatalf("expected no commits outside a git repo, got %d", len(analysis.RecentCommits))
	}
}
