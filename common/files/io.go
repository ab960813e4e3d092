package files

import (
	"os"
	"path"
)

func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

func MkDirIfNotExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(path, os.ModePerm)
}

// FixPrefixPath joins suffix under potentialRoot unless suffix is absolute
// or there is no root.
func FixPrefixPath(potentialRoot string, suffix string) (jointPath string) {
	if potentialRoot == "" || path.IsAbs(suffix) {
		return suffix
	}
	return path.Join(potentialRoot, suffix)
}

// FolderOrDefault returns configured when it is set, otherwise name under root.
func FolderOrDefault(root string, configured string, name string) string {
	if configured != "" {
		return configured
	}
	return FixPrefixPath(root, name)
}
