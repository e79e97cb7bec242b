package sync

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/localmind-ai/file-uploader/internal/utils"
)

// supportedExts is the document-format allow-list. Files of any other type
// are silently excluded from the scan.
var supportedExts = mapset.NewThreadUnsafeSet(".pdf", ".docx", ".txt", ".pptx", ".xlsx")

// ScanResult holds everything a scan learned about a root: eligible files
// keyed by canonical relative path, plus per-file stat failures. Failed paths
// are excluded from planning for this run, neither added nor deleted.
type ScanResult struct {
	Files  map[string]*LocalFile
	Failed map[string]error
}

// ScanDir walks root and fingerprints every supported file. WalkDir is
// lexical, so the traversal order is deterministic within a run. Directories
// and symlinks are never yielded as files. A walk failure aborts the scan.
func ScanDir(root string) (*ScanResult, error) {
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("directory does not exist: %s", root)
	}

	ignoreList := LoadIgnoreList(root)

	result := &ScanResult{
		Files:  make(map[string]*LocalFile),
		Failed: make(map[string]error),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk error: %w", walkErr)
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if !supportedExts.Contains(strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("walk rel path: %w", err)
		}
		relPath = utils.NormPath(relPath)

		if ignoreList.ShouldIgnore(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// unreadable file, keep scanning
			result.Failed[relPath] = err
			return nil
		}

		result.Files[relPath] = &LocalFile{
			RelPath: relPath,
			AbsPath: path,
			Fingerprint: Fingerprint{
				Size:    info.Size(),
				ModTime: info.ModTime(),
			},
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("local scan failed: %w", err)
	}

	return result, nil
}
