// Package analyzer inspects a code repository and produces the analysis
// record fed to the oracle: languages, technologies, commit history, file
// count and README content.
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

const (
	recentCommitLimit = 5
	readmeByteLimit   = 4000
)

// Patterns for paths that say nothing about the person's work.
var defaultIgnorePatterns = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/.next/**",
	"**/__pycache__/**",
	"**/.venv/**",
}

// Commit is a single entry of the repository's recent history.
type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// Analysis is the repository analysis record.
type Analysis struct {
	Summary       string         `json:"summary"`
	Languages     map[string]int `json:"languages"`
	Technologies  []string       `json:"technologies"`
	FileCount     int            `json:"fileCount"`
	RecentCommits []Commit       `json:"recentCommits"`
	ReadmeContent string         `json:"readmeContent,omitempty"`
}

// Analyzer walks a repository directory. Probes are independent and run
// concurrently; none depends on another's output.
type Analyzer struct {
	logger  *zap.Logger
	ignores []string
}

func New(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		logger:  logger,
		ignores: defaultIgnorePatterns,
	}
}

// Analyze inspects the directory and joins the probe results into a single
// analysis record. Probes that depend on optional tooling (git) or optional
// files (README) degrade to empty results instead of failing the analysis.
func (a *Analyzer) Analyze(ctx context.Context, dir string) (*Analysis, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analyze %s: not a directory", dir)
	}

	analysis := &Analysis{
		Languages:     map[string]int{},
		Technologies:  []string{},
		RecentCommits: []Commit{},
	}

	var mu sync.Mutex
	var walkErr error

	probes := []struct {
		name string
		run  func(context.Context) error
	}{
		{
			name: "languages",
			run: func(ctx context.Context) error {
				languages, err := a.countLanguages(ctx, dir)
				if err != nil {
					return err
				}
				mu.Lock()
				analysis.Languages = languages
				mu.Unlock()
				return nil
			},
		},
		{
			name: "technologies",
			run: func(ctx context.Context) error {
				technologies, err := a.detectTechnologies(ctx, dir)
				if err != nil {
					return err
				}
				mu.Lock()
				analysis.Technologies = technologies
				mu.Unlock()
				return nil
			},
		},
		{
			name: "file_count",
			run: func(ctx context.Context) error {
				count, err := a.countFiles(ctx, dir)
				if err != nil {
					return err
				}
				mu.Lock()
				analysis.FileCount = count
				mu.Unlock()
				return nil
			},
		},
		{
			name: "recent_commits",
			run: func(ctx context.Context) error {
				commits, err := recentCommits(ctx, dir)
				if err != nil {
					// Not every analyzed directory is a git repository.
					a.logger.Debug("commit listing unavailable", zap.Error(err))
					return nil
				}
				mu.Lock()
				analysis.RecentCommits = commits
				mu.Unlock()
				return nil
			},
		},
		{
			name: "readme",
			run: func(_ context.Context) error {
				mu.Lock()
				analysis.ReadmeContent = readReadme(dir)
				mu.Unlock()
				return nil
			},
		},
	}

	var wg sync.WaitGroup
	for _, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Now()
			err := probe.run(ctx)
			if err != nil {
				mu.Lock()
				if walkErr == nil {
					walkErr = fmt.Errorf("%s: %w", probe.name, err)
				}
				mu.Unlock()
			}

			a.logger.Debug("analysis probe finished",
				zap.String("probe", probe.name),
				zap.Duration("took", time.Since(start)),
			)
		}()
	}
	wg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	analysis.Summary = summarize(filepath.Base(dir), analysis)

	a.logger.Info("analyzed codebase",
		zap.String("directory", dir),
		zap.Int("file_count", analysis.FileCount),
		zap.Int("languages", len(analysis.Languages)),
		zap.Strings("technologies", analysis.Technologies),
	)

	return analysis, nil
}

func (a *Analyzer) ignored(relPath string) bool {
	// doublestar patterns expect forward slashes.
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range a.ignores {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

func (a *Analyzer) walk(ctx context.Context, dir string, visit func(relPath string, d fs.DirEntry)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		// Append a trailing element so directory patterns like
		// "**/node_modules/**" match the directory itself.
		if d.IsDir() {
			if a.ignored(rel + "/x") {
				return filepath.SkipDir
			}
			return nil
		}

		if a.ignored(rel) {
			return nil
		}

		visit(rel, d)
		return nil
	})
}

func (a *Analyzer) countLanguages(ctx context.Context, dir string) (map[string]int, error) {
	languages := map[string]int{}

	err := a.walk(ctx, dir, func(relPath string, _ fs.DirEntry) {
		if language, ok := languageByExtension[strings.ToLower(filepath.Ext(relPath))]; ok {
			languages[language]++
		}
	})
	if err != nil {
		return nil, err
	}

	return languages, nil
}

func (a *Analyzer) countFiles(ctx context.Context, dir string) (int, error) {
	count := 0
	err := a.walk(ctx, dir, func(string, fs.DirEntry) {
		count++
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func readReadme(dir string) string {
	for _, name := range []string{"README.md", "README", "readme.md", "Readme.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		content := string(data)
		if len(content) > readmeByteLimit {
			content = content[:readmeByteLimit]
		}
		return content
	}
	return ""
}

func summarize(name string, analysis *Analysis) string {
	primary := "unknown"
	best := 0
	for language, count := range analysis.Languages {
		if count > best || (count == best && language < primary) {
			primary = language
			best = count
		}
	}

	parts := []string{
		fmt.Sprintf("%s: %d files, primarily %s", name, analysis.FileCount, primary),
	}
	if len(analysis.Technologies) > 0 {
		parts = append(parts, "using "+strings.Join(analysis.Technologies, ", "))
	}
	if len(analysis.RecentCommits) > 0 {
		parts = append(parts, fmt.Sprintf("%d recent commits", len(analysis.RecentCommits)))
	}

	return strings.Join(parts, "; ")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
