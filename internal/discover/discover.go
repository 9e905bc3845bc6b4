// Package discover finds GFA files under a directory.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileEntry represents a discovered GFA file.
// Compressed files are recognized by name here; callers detect gzip from
// the content when opening.
type FileEntry struct {
	Path string // Relative to root
}

// OutputPath returns the FASTA path for this entry, relative to the output
// root: the same directory and base name with the .gfa[.gz] suffix
// replaced by .fa.
func (e FileEntry) OutputPath() string {
	return TrimExt(e.Path) + ".fa"
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"venv":         {},
	".venv":        {},
	"__pycache__":  {},
	".snakemake":   {},
	".nextflow":    {},
	"work":         {}, // nextflow work dirs
}

// Extension reports whether name is a GFA file, and whether it is gzipped.
func Extension(name string) (ok, compressed bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gfa"):
		return true, false
	case strings.HasSuffix(lower, ".gfa.gz"):
		return true, true
	}
	return false, false
}

// TrimExt strips a .gfa or .gfa.gz suffix, if present.
func TrimExt(path string) string {
	ok, compressed := Extension(path)
	switch {
	case !ok:
		return path
	case compressed:
		return path[:len(path)-len(".gfa.gz")]
	default:
		return path[:len(path)-len(".gfa")]
	}
}

// Files discovers GFA files under root, sorted by path. Files ignored by git
// (or by root's .gitignore outside a git checkout) are skipped, as are
// hidden files, hidden directories and symlinks.
func Files(root string) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if ok, _ := Extension(name); !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, FileEntry{Path: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
