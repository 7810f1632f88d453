// Package archive packages a run directory for upload.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ResearchAgent/internal/ports"
)

// Zipper writes <dir>.zip with paths relative to dir.
type Zipper struct{}

var _ ports.Archiver = Zipper{}

// Archive deflates every regular file under dir and returns the zip path.
func (Zipper) Archive(dir string) (string, error) {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}

	target := dir + ".zip"
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})

	closeErr := zw.Close()
	if err := out.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if walkErr != nil || closeErr != nil {
		_ = os.Remove(target)
		if walkErr != nil {
			return "", fmt.Errorf("zip %s: %w", dir, walkErr)
		}
		return "", fmt.Errorf("finish %s: %w", target, closeErr)
	}
	return target, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: strings.TrimPrefix(name, "/"), Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
