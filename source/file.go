package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/samber/lo"
)

// FileExt is appended to segment files stored next to the media.
const FileExt = ".skipsync.json"

// File is the format of local segment files.
type File struct {
	Video    string             `json:"video,omitempty" jsonschema:"description=Media the segments belong to. Informational"`
	Duration float64            `json:"duration,omitempty" jsonschema:"minimum=0,description=Duration of the media in seconds"`
	Locked   []segment.Category `json:"locked,omitempty" jsonschema:"description=Categories never skipped automatically for this media"`
	Segments []segment.Segment  `json:"segments" jsonschema:"required"`
}

// Validate checks every segment of f and reports all problems at once.
func (f File) Validate() error {
	var errs []error
	for i, seg := range f.Segments {
		if err := seg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("segment %d: %w", i, err))
		}
	}
	for _, c := range f.Locked {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("locked %q: %w", c, segment.ErrUnknownCategory))
		}
	}
	if dups := lo.FindDuplicatesBy(f.Segments, func(seg segment.Segment) segment.ID { return seg.ID }); len(dups) > 0 {
		errs = append(errs, fmt.Errorf("%w: duplicate id %s", segment.ErrInvalidSegment, dups[0].ID))
	}
	return errors.Join(errs...)
}

// ReadFile parses and validates a segment file.
func ReadFile(path string) (File, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteFile stores f at path, creating parent directories.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := filesystem.API().MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return filesystem.API().WriteFile(path, data, 0o644)
}

// Files reads segments from JSON files. It looks next to local media first, then in Dir.
type Files struct {
	Dir string
}

func (Files) Name() string { return "file" }

// Paths lists where segment files for req are looked up, in order.
func (s Files) Paths(req Request) []string {
	var paths []string
	if local(req.Media) {
		paths = append(paths, strings.TrimSuffix(req.Media, filepath.Ext(req.Media))+FileExt)
	}
	if s.Dir != "" && req.Stem() != "" {
		paths = append(paths, filepath.Join(s.Dir, req.Stem()+".json"))
	}
	return paths
}

func (s Files) Segments(_ context.Context, req Request) (Result, error) {
	for _, path := range s.Paths(req) {
		f, err := ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Result{Status: http.StatusUnprocessableEntity}, err
		}

		log.Infof("source: %d segments from %s", len(f.Segments), path)
		return Result{
			Status:   http.StatusOK,
			Found:    true,
			Duration: f.Duration,
			Locked:   f.Locked,
			Segments: f.Segments,
		}, nil
	}

	return Result{Status: http.StatusNotFound}, nil
}

// Save appends seg to the segment file of req in Dir, replacing a segment with the same id.
func (s Files) Save(req Request, seg segment.Segment) (string, error) {
	if err := seg.Validate(); err != nil {
		return "", err
	}

	paths := s.Paths(req)
	if len(paths) == 0 {
		return "", fmt.Errorf("no segment file location for %q", req.Media)
	}
	path := paths[len(paths)-1]

	f, err := ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if f.Video == "" {
		f.Video = req.Media
	}
	if f.Duration == 0 {
		f.Duration = req.Duration
	}

	seg.Skipped, seg.Submitting = false, false
	f.Segments = append(lo.Reject(f.Segments, func(s segment.Segment, _ int) bool {
		return s.ID == seg.ID
	}), seg)

	return path, WriteFile(path, f)
}

func local(media string) bool {
	return media != "" && !strings.Contains(media, "://")
}
