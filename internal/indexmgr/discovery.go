package indexmgr

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/localsearch/localsearch/internal/config"
	"github.com/localsearch/localsearch/internal/pathutil"
)

// discoveredFile is one file accepted by policy during enumeration.
type discoveredFile struct {
	relPath string
	absPath string
	isDoc   bool
}

// discoveryWarning records a non-fatal issue found during enumeration
// (§4.7 symlink rejection, file-limit warning).
type discoveryWarning struct {
	Path string
	Kind string // "symlink" | "unreadable" | "too_large" | "binary" | "file_limit"
}

// discovery enumerates a project's files per the Config Document's
// include/exclude/respectGitignore/maxFileSize/maxFiles policy (§4.7).
type discovery struct {
	root          string
	includeGlobs  []glob.Glob
	docGlobs      []glob.Glob
	excludeGlobs  []glob.Glob
	gitignoreGlobs []glob.Glob
	maxFileSize   int64
	maxFiles      int
}

func newDiscovery(root string, cfg *config.Config) (*discovery, error) {
	d := &discovery{root: root, maxFiles: cfg.MaxFiles}

	maxSize, err := config.ParseSize(cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	d.maxFileSize = maxSize

	for _, p := range cfg.Include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		d.includeGlobs = append(d.includeGlobs, g)
	}
	if cfg.IndexDocs {
		for _, p := range cfg.DocPatterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, err
			}
			d.docGlobs = append(d.docGlobs, g)
		}
	}
	for _, p := range cfg.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		d.excludeGlobs = append(d.excludeGlobs, g)
	}
	if cfg.RespectGitignore {
		d.gitignoreGlobs = loadGitignore(root)
	}
	return d, nil
}

// enumerate walks root, applying policy. Returns accepted files plus any
// non-fatal warnings encountered along the way.
func (d *discovery) enumerate() ([]discoveredFile, []discoveryWarning, error) {
	var files []discoveredFile
	var warnings []discoveryWarning

	err := filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			warnings = append(warnings, discoveryWarning{Path: path, Kind: "unreadable"})
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := pathutil.ToRel(d.root, path)
		if relErr != nil {
			return nil
		}

		if d.isExcluded(rel) {
			return nil
		}

		// Symlink rejection (security, §4.7, §8 S6).
		lst, lerr := os.Lstat(path)
		if lerr == nil && lst.Mode()&os.ModeSymlink != 0 {
			warnings = append(warnings, discoveryWarning{Path: rel, Kind: "symlink"})
			return nil
		}

		isDoc := matchesAny(rel, d.docGlobs)
		isCode := matchesAny(rel, d.includeGlobs)
		if !isDoc && !isCode {
			return nil
		}

		if info.Size() > d.maxFileSize {
			warnings = append(warnings, discoveryWarning{Path: rel, Kind: "too_large"})
			return nil
		}

		if looksBinary(path) {
			warnings = append(warnings, discoveryWarning{Path: rel, Kind: "binary"})
			return nil
		}

		files = append(files, discoveredFile{relPath: rel, absPath: path, isDoc: isDoc})
		if len(files) == d.maxFiles+1 {
			warnings = append(warnings, discoveryWarning{Path: d.root, Kind: "file_limit"})
		}
		return nil
	})
	return files, warnings, err
}

func (d *discovery) isExcluded(rel string) bool {
	if strings.HasPrefix(rel, ".localsearch/") || rel == ".localsearch" {
		return true
	}
	if matchesAny(rel, d.excludeGlobs) || matchesAny(rel+"/**", d.excludeGlobs) {
		return true
	}
	if matchesAny(rel, d.gitignoreGlobs) || matchesAny(rel+"/**", d.gitignoreGlobs) {
		return true
	}
	return false
}

func matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// loadGitignore turns ".gitignore" lines at the project root into glob
// patterns. Nested .gitignore files and negation are intentionally not
// supported — a reasonable simplification the spec leaves unspecified.
func loadGitignore(root string) []glob.Glob {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var globs []glob.Glob
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		pattern := strings.TrimPrefix(line, "/")
		if !strings.Contains(pattern, "*") && !strings.HasSuffix(pattern, "/") {
			pattern = pattern + "/**"
		} else if strings.HasSuffix(pattern, "/") {
			pattern = pattern + "**"
		}
		if g, err := glob.Compile(pattern, '/'); err == nil {
			globs = append(globs, g)
		}
	}
	return globs
}

// looksBinary sniffs the first 8KB for NUL bytes, the same heuristic Git
// and most text tools use to reject binary files.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 8192)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) != -1
}
