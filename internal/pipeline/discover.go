package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/detect"
)

// Discover walks the project and returns the files worth screening: Java
// sources plus application config candidates. Build output, hidden
// directories, and backup sidecars are excluded. The returned order is the
// walk order, which keeps report ordering stable between runs.
func Discover(projectPath string, backupSuffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if backupSuffix != "" && strings.HasSuffix(path, backupSuffix) {
			return nil
		}
		if detect.IsJavaFile(path) || detect.IsConfigCandidate(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
