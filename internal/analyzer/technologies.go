package analyzer

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
)

// manifestTechnologies maps dependency manifests and well-known files to
// the technology their presence implies.
var manifestTechnologies = map[string]string{
	"go.mod":             "Go",
	"package.json":       "Node.js",
	"tsconfig.json":      "TypeScript",
	"requirements.txt":   "Python",
	"pyproject.toml":     "Python",
	"Pipfile":            "Python",
	"Cargo.toml":         "Rust",
	"Gemfile":            "Ruby",
	"pom.xml":            "Maven",
	"build.gradle":       "Gradle",
	"build.gradle.kts":   "Gradle",
	"Dockerfile":         "Docker",
	"docker-compose.yml": "Docker Compose",
	"Makefile":           "Make",
	".terraform":         "Terraform",
	"main.tf":            "Terraform",
}

// npmTechnologies maps notable package.json dependencies to technologies.
var npmTechnologies = map[string]string{
	"react":       "React",
	"react-dom":   "React",
	"next":        "Next.js",
	"vue":         "Vue.js",
	"nuxt":        "Nuxt",
	"@angular/core": "Angular",
	"svelte":      "Svelte",
	"express":     "Express",
	"fastify":     "Fastify",
	"jest":        "Jest",
	"vitest":      "Vitest",
	"webpack":     "Webpack",
	"vite":        "Vite",
	"tailwindcss": "Tailwind CSS",
	"typescript":  "TypeScript",
	"prisma":      "Prisma",
	"graphql":     "GraphQL",
}

// detectTechnologies scans the tree for dependency manifests and well-known
// files, returning a sorted, deduplicated technology list.
func (a *Analyzer) detectTechnologies(ctx context.Context, dir string) ([]string, error) {
	found := map[string]struct{}{}

	err := a.walk(ctx, dir, func(relPath string, _ fs.DirEntry) {
		base := filepath.Base(relPath)

		if tech, ok := manifestTechnologies[base]; ok {
			found[tech] = struct{}{}
		}

		if base == "package.json" {
			for _, tech := range npmDependencies(filepath.Join(dir, relPath)) {
				found[tech] = struct{}{}
			}
		}

		if filepath.ToSlash(relPath) == ".github/workflows" || containsWorkflow(relPath) {
			found["GitHub Actions"] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}

	return sortedKeys(found), nil
}

func containsWorkflow(relPath string) bool {
	slashed := filepath.ToSlash(relPath)
	return len(slashed) > len(".github/workflows/") && slashed[:len(".github/workflows/")] == ".github/workflows/"
}

// npmDependencies reads a package.json and reports known technologies from
// its dependency blocks. Unreadable or malformed manifests are skipped.
func npmDependencies(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}

	var found []string
	for name := range manifest.Dependencies {
		if tech, ok := npmTechnologies[name]; ok {
			found = append(found, tech)
		}
	}
	for name := range manifest.DevDependencies {
		if tech, ok := npmTechnologies[name]; ok {
			found = append(found, tech)
		}
	}

	return found
}
