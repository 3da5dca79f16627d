// Package outlier finds recordings that are much smaller than their
// siblings. A truncated synthesis usually shows up as a file a fraction of
// the size of the other voices for the same word.
package outlier

import (
	"log/slog"
	"path/filepath"
	"slices"
	"sort"

	"github.com/spf13/afero"

	"github.com/example/minpairs-audio/internal/layout"
)

// DefaultThreshold flags files below 30% of the directory median.
const DefaultThreshold = 0.3

type Options struct {
	// Threshold is the fraction of the median below which a file is flagged.
	Threshold float64
	// Delete removes flagged files. Otherwise the scan is a dry run.
	Delete bool
	Logger *slog.Logger
}

// File is one flagged recording.
type File struct {
	Path  string
	Name  string
	Size  int64
	Ratio float64
	// Deleted is set when Delete removed the file.
	Deleted bool
	// Err holds a failed delete.
	Err error
}

// Group is a word directory with at least one flagged file.
type Group struct {
	Dir           string
	Files         int
	Median        float64
	Min, Max      int64
	ThresholdSize float64
	Flagged       []File
}

type Report struct {
	Root      string
	Threshold float64
	DryRun    bool
	Groups    []Group
	Analyzed  int
	Flagged   int
	Deleted   int
}

// Scan checks every word directory under root holding at least two audio
// files. Delete failures are recorded on the file and do not stop the scan.
func Scan(fsys afero.Fs, root string, opts Options) (*Report, error) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := layout.CheckRoot(fsys, root); err != nil {
		return nil, err
	}

	dirs, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}

	rep := &Report{Root: root, Threshold: opts.Threshold, DryRun: !opts.Delete}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}

		dir := filepath.Join(root, d.Name())
		infos, err := afero.ReadDir(fsys, dir)
		if err != nil {
			logger.Warn("skipping unreadable word directory", "dir", d.Name(), "err", err)
			continue
		}

		var files []File
		for _, fi := range infos {
			if fi.IsDir() || !layout.IsAudioFile(fi.Name()) {
				continue
			}
			files = append(files, File{Path: filepath.Join(dir, fi.Name()), Name: fi.Name(), Size: fi.Size()})
		}
		if len(files) < 2 {
			continue
		}
		rep.Analyzed += len(files)

		g := analyze(d.Name(), files, opts.Threshold)
		if len(g.Flagged) == 0 {
			continue
		}

		for i := range g.Flagged {
			f := &g.Flagged[i]
			rep.Flagged++
			if !opts.Delete {
				continue
			}
			if err := fsys.Remove(f.Path); err != nil {
				f.Err = err
				logger.Warn("failed to delete small file", "path", f.Path, "err", err)
				continue
			}
			f.Deleted = true
			rep.Deleted++
			logger.Info("deleted small file", "path", f.Path, "size", f.Size, "ratio", f.Ratio)
		}

		rep.Groups = append(rep.Groups, g)
	}

	return rep, nil
}

func analyze(dir string, files []File, threshold float64) Group {
	sizes := make([]int64, len(files))
	for i, f := range files {
		sizes[i] = f.Size
	}

	med := Median(sizes)
	g := Group{
		Dir:           dir,
		Files:         len(files),
		Median:        med,
		Min:           slices.Min(sizes),
		Max:           slices.Max(sizes),
		ThresholdSize: med * threshold,
	}

	for _, f := range files {
		if float64(f.Size) < g.ThresholdSize {
			if med > 0 {
				f.Ratio = float64(f.Size) / med
			}
			g.Flagged = append(g.Flagged, f)
		}
	}

	return g
}

// Median returns the middle value of sizes, averaging the two middle values
// for an even count. It returns 0 for no input.
func Median(sizes []int64) float64 {
	if len(sizes) == 0 {
		return 0
	}

	s := slices.Clone(sizes)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })

	mid := len(s) / 2
	if len(s)%2 == 1 {
		return float64(s[mid])
	}

	return float64(s[mid-1]+s[mid]) / 2
}
