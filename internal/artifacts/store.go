package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jobtracker-backend/internal/shared/metrics"
)

const (
	// DefaultDir is used when Config.Dir is empty.
	DefaultDir = "uploads/schedule/resumes"

	fileExt         = ".pdf"
	tmpExt          = ".tmp"
	maxLinkAttempts = 16
)

// Config configures a Store.
type Config struct {
	// Dir is the schedule directory holding every artifact.
	Dir string
	// Now overrides the clock used for suffixes. Defaults to time.Now.
	Now func() time.Time
}

// Artifact describes one stored PDF.
type Artifact struct {
	Name    string
	Prefix  string
	Suffix  int64
	Size    int64
	ModTime time.Time
	SHA256  string
}

// Store keeps artifacts as {prefix}_{suffix}.pdf files in a single directory.
// Files are never overwritten or deleted; the current artifact for a prefix
// is the most recently modified match.
type Store struct {
	dir  string
	now  func() time.Time
	last atomic.Int64
}

// NewStore constructs a Store. The directory is created lazily on first write.
func NewStore(cfg Config) *Store {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = DefaultDir
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{dir: dir, now: now}
}

// Dir returns the schedule directory.
func (s *Store) Dir() string {
	return s.dir
}

// Write stores data under prefix with a fresh millisecond suffix.
//
// Content is staged in a temp file, fsynced and then hard-linked to its final
// name, so readers never observe a partial artifact and an existing name is
// never replaced.
func (s *Store) Write(ctx context.Context, prefix string, data []byte) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if err := validateSegment(prefix); err != nil {
		return Artifact{}, err
	}
	if len(data) == 0 {
		return Artifact{}, ErrEmptyArtifact
	}

	art, err := s.write(ctx, prefix, data)
	if err != nil {
		metrics.IncArtifactWrite("error")
		return Artifact{}, err
	}
	metrics.IncArtifactWrite("ok")
	return art, nil
}

func (s *Store) write(ctx context.Context, prefix string, data []byte) (Artifact, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("%w: mkdir %s: %v", ErrUnavailable, s.dir, err)
	}

	tmpPath := filepath.Join(s.dir, "."+prefix+"_"+uuid.NewString()+tmpExt)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: create temp file: %v", ErrUnavailable, err)
	}
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	if _, err := io.MultiWriter(f, hasher).Write(data); err != nil {
		f.Close()
		return Artifact{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return Artifact{}, fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Artifact{}, fmt.Errorf("close temp file: %w", err)
	}
	sum := hex.EncodeToString(hasher.Sum(nil))

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		suffix := s.nextSuffix()
		name := prefix + "_" + strconv.FormatInt(suffix, 10) + fileExt
		fullPath := filepath.Join(s.dir, name)

		err := os.Link(tmpPath, fullPath)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Artifact{}, fmt.Errorf("link artifact %s: %w", name, err)
		}

		art := Artifact{
			Name:   name,
			Prefix: prefix,
			Suffix: suffix,
			Size:   int64(len(data)),
			SHA256: sum,
		}
		if info, err := os.Stat(fullPath); err == nil {
			art.ModTime = info.ModTime()
		}
		return art, nil
	}
	return Artifact{}, fmt.Errorf("link artifact for %s: suffix space exhausted after %d attempts", prefix, maxLinkAttempts)
}

// Locate finds the current artifact for prefix without reading it.
// A missing directory is reported as ErrNotFound.
func (s *Store) Locate(ctx context.Context, prefix string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if err := validateSegment(prefix); err != nil {
		return Artifact{}, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, ErrNotFound
		}
		return Artifact{}, fmt.Errorf("%w: read dir %s: %v", ErrUnavailable, s.dir, err)
	}

	var (
		best  Artifact
		found bool
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		suffix, ok := MatchName(entry.Name(), prefix)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Artifact{}, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, entry.Name(), err)
		}
		cand := Artifact{
			Name:    entry.Name(),
			Prefix:  prefix,
			Suffix:  suffix,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if !found || newer(cand, best) {
			best = cand
			found = true
		}
	}
	if !found {
		return Artifact{}, ErrNotFound
	}
	return best, nil
}

// Resolve returns the bytes of the current artifact for prefix. A prefix
// without artifacts yields found=false and a nil error.
func (s *Store) Resolve(ctx context.Context, prefix string) ([]byte, bool, error) {
	art, err := s.Locate(ctx, prefix)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, art.Name))
	if err != nil {
		return nil, false, fmt.Errorf("read artifact %s: %w", art.Name, err)
	}
	return data, true, nil
}

// Stat describes a named artifact.
func (s *Store) Stat(ctx context.Context, name string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	prefix, suffix, err := parseName(name)
	if err != nil {
		return Artifact{}, err
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, ErrNotFound
		}
		return Artifact{}, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, name, err)
	}
	if !info.Mode().IsRegular() {
		return Artifact{}, ErrNotFound
	}
	return Artifact{
		Name:    name,
		Prefix:  prefix,
		Suffix:  suffix,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Open opens a named artifact for streaming. Callers must close the reader.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, Artifact, error) {
	art, err := s.Stat(ctx, name)
	if err != nil {
		return nil, Artifact{}, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Artifact{}, ErrNotFound
		}
		return nil, Artifact{}, fmt.Errorf("open artifact %s: %w", name, err)
	}
	return f, art, nil
}

// Checksum computes the SHA-256 of a named artifact.
func (s *Store) Checksum(ctx context.Context, name string) (string, error) {
	rc, _, err := s.Open(ctx, name)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, rc); err != nil {
		return "", fmt.Errorf("checksum artifact %s: %w", name, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Remove deletes a named artifact. A missing file is not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := parseName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrUnavailable, name, err)
	}
	return nil
}

// MatchName reports whether name is an artifact of exactly prefix, i.e.
// {prefix}_{digits}.pdf, and returns its suffix.
func MatchName(name, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(name, prefix+"_")
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, fileExt)
	if !ok || !allDigits(digits) {
		return 0, false
	}
	suffix, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return suffix, true
}

func parseName(name string) (string, int64, error) {
	if err := validateSegment(name); err != nil {
		return "", 0, err
	}
	base, ok := strings.CutSuffix(name, fileExt)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	idx := strings.LastIndexByte(base, '_')
	if idx <= 0 || !allDigits(base[idx+1:]) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	suffix, err := strconv.ParseInt(base[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base[:idx], suffix, nil
}

func (s *Store) nextSuffix() int64 {
	for {
		now := s.now().UnixMilli()
		last := s.last.Load()
		if now <= last {
			now = last + 1
		}
		if s.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

func newer(a, b Artifact) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Suffix > b.Suffix
}

func validateSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.HasPrefix(s, ".") || strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
