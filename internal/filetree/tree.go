// Package filetree writes a plain-text report of a directory tree: entries
// sorted by numeric prefix then name, exclusions applied, and a summary of
// the folders and files listed.
package filetree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Timestamp is the UTC layout report and archive names carry.
const Timestamp = "060102Z150405"

// Summary counts what a tree listed.
type Summary struct {
	Folders int
	Files   int
}

// Report is a written tree report.
type Report struct {
	Path     string
	Summary  Summary
	Archived []string
}

// Options configures Write.
type Options struct {
	Fs afero.Fs
	// Target is the directory to describe.
	Target string
	// Output is the report path without timestamp or extension, e.g.
	// "reports/file_tree". The timestamp and ".txt" are appended.
	Output     string
	Exclusions Exclusions
	// ArchivePrevious moves earlier reports into <output dir>/archive.
	ArchivePrevious bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Write renders the tree of opts.Target into a new timestamped report.
func Write(opts Options) (*Report, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	info, err := fs.Stat(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("reading target: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target %s is not a directory", opts.Target)
	}

	outDir := filepath.Dir(opts.Output)
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	report := &Report{}
	stamp := now().UTC().Format(Timestamp)
	if opts.ArchivePrevious {
		report.Archived, err = archivePrevious(fs, opts.Output, stamp)
		if err != nil {
			return nil, err
		}
	}

	report.Path = fmt.Sprintf("%s_%s.txt", opts.Output, stamp)
	f, err := fs.Create(report.Path)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Target Path: %s\n", absPath(opts.Target))
	fmt.Fprintf(w, "Output Path: %s\n\n", absPath(report.Path))
	report.Summary = Render(fs, opts.Target, opts.Exclusions, w)
	writeExclusions(w, opts.Exclusions)
	fmt.Fprintf(w, "\nSummary:\n  Folders: %d\n  Files: %d\n", report.Summary.Folders, report.Summary.Files)

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing report: %w", err)
	}
	return report, nil
}

// Render writes the tree lines of target, starting with its name. Entries
// that cannot be read are written as bracketed error lines.
func Render(fs afero.Fs, target string, excl Exclusions, w io.Writer) Summary {
	var sum Summary
	fmt.Fprintf(w, "%s/\n", filepath.Base(filepath.Clean(target)))
	walk(fs, target, "", "", excl, w, &sum)
	return sum
}

func walk(fs afero.Fs, dir, rel, prefix string, excl Exclusions, w io.Writer, sum *Summary) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsPermission(err) {
			fmt.Fprintf(w, "%s└─ [Permission Denied: %s]\n", prefix, dir)
		} else {
			fmt.Fprintf(w, "%s└─ [Error accessing %s: %v]\n", prefix, dir, err)
		}
		return
	}

	kept := entries[:0]
	for _, e := range entries {
		if !excl.Excluded(path.Join(rel, e.Name())) {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		ni, nj := leadingNumber(kept[i].Name()), leadingNumber(kept[j].Name())
		if ni != nj {
			return ni < nj
		}
		return kept[i].Name() < kept[j].Name()
	})

	for i, e := range kept {
		last := i == len(kept)-1
		connector := "├─"
		if last {
			connector = "└─"
		}
		if !e.IsDir() {
			fmt.Fprintf(w, "%s%s %s\n", prefix, connector, e.Name())
			sum.Files++
			continue
		}
		fmt.Fprintf(w, "%s%s %s/\n", prefix, connector, e.Name())
		sum.Folders++
		childPrefix := prefix + "│   "
		if last {
			childPrefix = prefix + "    "
		}
		walk(fs, filepath.Join(dir, e.Name()), path.Join(rel, e.Name()), childPrefix, excl, w, sum)
	}
}

// leadingNumber returns the integer a name starts with; names without one
// sort after every numbered name.
func leadingNumber(name string) uint64 {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return ^uint64(0)
	}
	n, err := strconv.ParseUint(name[:end], 10, 64)
	if err != nil {
		return ^uint64(0) - 1
	}
	return n
}

func writeExclusions(w io.Writer, excl Exclusions) {
	fmt.Fprint(w, "\nExclusions:\n")
	for _, sec := range excl.sections() {
		fmt.Fprintf(w, "  %s:\n", sec.title)
		if len(sec.values) == 0 {
			fmt.Fprint(w, "    - None\n")
			continue
		}
		for _, v := range sec.values {
			fmt.Fprintf(w, "    - %s\n", v)
		}
	}
}

// archivePrevious moves earlier reports for output into an archive folder
// next to them.
func archivePrevious(fs afero.Fs, output, stamp string) ([]string, error) {
	dir, stem := filepath.Dir(output), filepath.Base(output)
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	var archived []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(stem+"*.txt", e.Name()); !ok {
			continue
		}
		archiveDir := filepath.Join(dir, "archive")
		if err := fs.MkdirAll(archiveDir, 0o755); err != nil {
			return archived, fmt.Errorf("creating archive directory: %w", err)
		}
		base := e.Name()[:len(e.Name())-len(".txt")]
		dest := filepath.Join(archiveDir, fmt.Sprintf("%s_archived_%s.txt", base, stamp))
		if err := fs.Rename(filepath.Join(dir, e.Name()), dest); err != nil {
			return archived, fmt.Errorf("archiving %s: %w", e.Name(), err)
		}
		archived = append(archived, dest)
	}
	return archived, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
