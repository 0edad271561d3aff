package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory to the target path and
// returns the files written. Existing files are kept unless force is set.
// It handles special file renames (e.g., "gitignore" -> ".gitignore").
func copyTemplate(templateName, targetDir string, force bool) ([]string, error) {
	root := path.Join("templates", templateName)

	var written []string
	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, renameSpecialFiles(relPath))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0o750)
		}

		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, content, 0o600); err != nil {
			return err
		}
		written = append(written, renameSpecialFiles(relPath))
		return nil
	})

	return written, err
}

// renameSpecialFiles handles files that need renaming (e.g., dotfiles).
func renameSpecialFiles(p string) string {
	base := filepath.Base(p)
	dir := filepath.Dir(p)

	switch base {
	case "gitignore":
		return filepath.Join(dir, ".gitignore")
	default:
		return p
	}
}
