package analyzer

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// recentCommits shells out to git for the latest history entries. Returns
// an error when the directory is not a repository or git is unavailable.
func recentCommits(ctx context.Context, dir string) ([]Commit, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "log",
		"-n", strconv.Itoa(recentCommitLimit),
		"--pretty=format:%h%x09%an%x09%as%x09%s",
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 4 {
			continue
		}

		commits = append(commits, Commit{
			Hash:    fields[0],
			Author:  fields[1],
			Date:    fields[2],
			Message: fields[3],
		})
	}

	return commits, nil
}
