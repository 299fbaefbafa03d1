package logging

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DefaultKeep is how many recent log files ArchiveOld leaves in place.
const DefaultKeep = 5

const archiveDirName = "archive"

// ArchiveOld moves all but the newest keep .log files of dir into one zip
// under dir/archive, then repeats for every subdirectory except archive.
// It returns the archives it wrote. Directories without log files are left
// untouched.
func ArchiveOld(fs afero.Fs, dir string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must be >= 0, got %d", keep)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading log directory %s: %w", dir, err)
	}

	var logs []string
	modTimes := make(map[string]int64)
	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if entry.Name() != archiveDirName {
				subdirs = append(subdirs, path)
			}
		case strings.HasSuffix(entry.Name(), ".log"):
			logs = append(logs, path)
			modTimes[path] = entry.ModTime().UnixNano()
		}
	}

	// oldest first; names break ties since they embed the creation time
	sort.Slice(logs, func(i, j int) bool {
		if modTimes[logs[i]] != modTimes[logs[j]] {
			return modTimes[logs[i]] < modTimes[logs[j]]
		}
		return logs[i] < logs[j]
	})

	var written []string
	if len(logs) > keep {
		archive, err := zipAndRemove(fs, dir, logs[:len(logs)-keep])
		if err != nil {
			return written, err
		}
		written = append(written, archive)
	}

	for _, sub := range subdirs {
		archives, err := ArchiveOld(fs, sub, keep)
		written = append(written, archives...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func zipAndRemove(fs afero.Fs, dir string, files []string) (string, error) {
	first, err := fs.Stat(files[0])
	if err != nil {
		return "", err
	}
	last, err := fs.Stat(files[len(files)-1])
	if err != nil {
		return "", err
	}

	label := filepath.Base(filepath.Clean(dir))
	if label == "." || label == string(filepath.Separator) {
		label = "root"
	}
	archiveDir := filepath.Join(dir, archiveDirName)
	if err := fs.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}
	name := fmt.Sprintf("%s_logs_%s_to_%s.zip", label,
		first.ModTime().Format("20060102_150405"), last.ModTime().Format("20060102_150405"))
	archivePath := filepath.Join(archiveDir, name)

	out, err := fs.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("creating archive %s: %w", archivePath, err)
	}
	zw := zip.NewWriter(out)
	for _, path := range files {
		if err := addToZip(fs, zw, path); err != nil {
			zw.Close()
			out.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("finalizing archive %s: %w", archivePath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing archive %s: %w", archivePath, err)
	}

	// originals go only once the archive is complete
	for _, path := range files {
		if err := fs.Remove(path); err != nil {
			return archivePath, fmt.Errorf("removing archived log %s: %w", path, err)
		}
	}
	return archivePath, nil
}

func addToZip(fs afero.Fs, zw *zip.Writer, path string) error {
	in, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", path, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("writing %s to archive: %w", path, err)
	}
	return nil
}
