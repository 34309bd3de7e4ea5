package scanner

import (
	"path/filepath"
	"strings"
)

// Role classifies a file by its purpose in the repository.
type Role string

const (
	RoleImplementation Role = "impl"
	RoleTest           Role = "test"
	RoleConfig         Role = "config"
	RoleDocs           Role = "docs"
	RoleGenerated      Role = "generated"
	RoleBuild          Role = "build"
	RoleOther          Role = "other"
)

// FileInfo describes one discovered file.
type FileInfo struct {
	// Path is relative to the scan root, forward slashes.
	Path string

	// Size is the file size in bytes.
	Size int64

	// Hash is the hex SHA-256 of the file content.
	Hash string

	// Language is the detected language, or "" when unknown.
	Language string

	// Role is the classified file role.
	Role Role
}

// languageByExt maps file extensions to language names.
var languageByExt = map[string]string{
	".go":    "go",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".py":    "python",
	".rs":    "rust",
	".rb":    "ruby",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".sh":    "shell",
	".bash":  "shell",
	".sql":   "sql",
	".md":    "markdown",
	".rst":   "markdown",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".json":  "json",
	".html":  "html",
	".css":   "css",
}

// DetectLanguage returns the language for a path, or "".
func DetectLanguage(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

// buildFileNames are exact base names treated as build files.
var buildFileNames = map[string]bool{
	"makefile":       true,
	"dockerfile":     true,
	"cmakelists.txt": true,
	"build.gradle":   true,
	"pom.xml":        true,
	"cargo.toml":     true,
	"go.mod":         true,
	"package.json":   true,
	"setup.py":       true,
	"justfile":       true,
	"rakefile":       true,
}

// configExts are extensions classified as configuration.
var configExts = map[string]bool{
	".yaml": true,
	".yml":  true,
	".toml": true,
	".json": true,
	".ini":  true,
	".cfg":  true,
	".conf": true,
}

// sourceExts are extensions classified as implementation code.
var sourceExts = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".mjs": true,
	".ts": true, ".tsx": true, ".py": true, ".rs": true,
	".rb": true, ".java": true, ".c": true, ".h": true,
	".cc": true, ".cpp": true, ".cxx": true, ".hpp": true,
	".cs": true, ".php": true, ".swift": true, ".kt": true,
	".scala": true, ".sh": true, ".bash": true, ".sql": true,
	".css": true,
}

// ClassifyRole assigns a Role to a path. Precedence matters: generated
// beats test, test beats everything below it.
func ClassifyRole(path string) Role {
	path = filepath.ToSlash(path)
	lower := strings.ToLower(path)
	base := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(lower)
	stem := strings.TrimSuffix(base, ext)

	if isGenerated(lower, base) {
		return RoleGenerated
	}
	if isTest(lower, base, stem) {
		return RoleTest
	}
	if ext == ".md" || ext == ".rst" || hasDir(lower, "docs") || hasDir(lower, "doc") {
		return RoleDocs
	}
	if buildFileNames[base] {
		return RoleBuild
	}
	if configExts[ext] || strings.HasPrefix(base, ".env") || base == ".gitignore" || base == ".gitattributes" {
		return RoleConfig
	}
	if sourceExts[ext] {
		return RoleImplementation
	}
	return RoleOther
}

func isGenerated(lower, base string) bool {
	if hasDir(lower, "vendor") || hasDir(lower, "node_modules") || hasDir(lower, "third_party") {
		return true
	}
	if strings.HasSuffix(base, ".pb.go") || strings.HasSuffix(base, ".gen.go") {
		return true
	}
	if strings.Contains(base, ".generated.") || strings.HasSuffix(base, ".min.js") {
		return true
	}
	return false
}

func isTest(lower, base, stem string) bool {
	if hasDir(lower, "tests") || hasDir(lower, "test") || hasDir(lower, "__tests__") || hasDir(lower, "spec") {
		return true
	}
	if strings.HasSuffix(stem, "_test") || strings.HasSuffix(stem, "_spec") || strings.HasPrefix(stem, "test_") {
		return true
	}
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	return false
}

// hasDir reports whether a slash-separated path contains dir as a
// component (not as the final file name).
func hasDir(path, dir string) bool {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == dir {
			return true
		}
	}
	return false
}
