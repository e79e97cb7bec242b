package sync

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/localmind-ai/file-uploader/internal/utils"
)

const ignoreFileName = ".syncignore"

var defaultIgnoreLines = []string{
	ignoreFileName,
	// General excludes
	".git",
	"*.tmp",
	"*.log",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
}

// IgnoreList filters scanned paths with gitignore semantics. Every root gets
// the defaults plus an optional .syncignore file at its top level.
type IgnoreList struct {
	ignore *gitignore.GitIgnore
}

func LoadIgnoreList(root string) *IgnoreList {
	ignoreLines := append([]string{}, defaultIgnoreLines...)

	ignorePath := filepath.Join(root, ignoreFileName)
	if utils.FileExists(ignorePath) {
		file, err := os.Open(ignorePath)
		if err != nil {
			slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()
			rules := 0
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				ignoreLines = append(ignoreLines, line)
				rules++
			}
			slog.Debug("loaded ignore file", "path", ignorePath, "rules", rules)
		}
	}

	return &IgnoreList{ignore: gitignore.CompileIgnoreLines(ignoreLines...)}
}

func (l *IgnoreList) ShouldIgnore(relPath string) bool {
	return l.ignore.MatchesPath(relPath)
}
