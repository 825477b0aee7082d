package trash

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fmigen/fmigen/internal/branding"
	"github.com/fmigen/fmigen/internal/platform"
)

const (
	filesDir      = "files"
	infoDir       = "info"
	infoExt       = ".trashinfo"
	infoHeader    = "[Trash Info]"
	deletionStamp = "2006-01-02T15:04:05"
)

// Errors returned by Discard.
var (
	ErrNotFound = errors.New("path does not exist")
	ErrInside   = errors.New("trash directory lies inside the discarded path")
)

// Bin is a trash directory.
type Bin struct {
	Root string

	// Now is used for DeletionDate; defaults to time.Now.
	Now func() time.Time
}

// Entry describes one discarded path.
type Entry struct {
	Name         string    // unique name inside the bin
	Path         string    // current location under <root>/files
	InfoPath     string    // <root>/info/<name>.trashinfo
	OriginalPath string    // absolute path the entry was discarded from
	DeletedAt    time.Time // local time of the discard
}

// New returns a Bin rooted at root.
func New(root string) *Bin {
	return &Bin{Root: root, Now: time.Now}
}

// DefaultDir returns the trash location for the current user. On Linux it is
// the freedesktop home trash ($XDG_DATA_HOME/Trash or ~/.local/share/Trash);
// elsewhere ~/.fmigen/trash.
func DefaultDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "Trash"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	if runtime.GOOS == "linux" {
		return filepath.Join(home, ".local", "share", "Trash"), nil
	}
	return filepath.Join(home, branding.HomeDir(), "trash"), nil
}

// Discard moves path into the bin and records where it came from.
func (b *Bin) Discard(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Lstat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("discarding %s: %w", abs, ErrNotFound)
		}
		return nil, fmt.Errorf("discarding %s: %w", abs, err)
	}
	root, err := filepath.Abs(b.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving trash directory: %w", err)
	}
	if within(abs, root) {
		return nil, fmt.Errorf("discarding %s into %s: %w", abs, root, ErrInside)
	}

	if err := b.ensureLayout(); err != nil {
		return nil, err
	}

	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}

	// Reserve a unique name by creating its .trashinfo exclusively.
	name, infoPath, err := b.reserve(filepath.Base(abs), abs, now)
	if err != nil {
		return nil, err
	}

	dst := filepath.Join(b.Root, filesDir, name)
	if err := move(abs, dst); err != nil {
		os.Remove(infoPath)
		return nil, fmt.Errorf("moving %s to trash: %w", abs, err)
	}

	return &Entry{
		Name:         name,
		Path:         dst,
		InfoPath:     infoPath,
		OriginalPath: abs,
		DeletedAt:    now,
	}, nil
}

// Restore moves an entry back to its original location. It refuses to
// overwrite anything that now occupies that location.
func (b *Bin) Restore(e *Entry) error {
	if _, err := os.Lstat(e.OriginalPath); err == nil {
		return fmt.Errorf("restoring %s: original location is occupied", e.OriginalPath)
	}
	if err := os.MkdirAll(filepath.Dir(e.OriginalPath), 0755); err != nil {
		return fmt.Errorf("restoring %s: %w", e.OriginalPath, err)
	}
	if err := move(e.Path, e.OriginalPath); err != nil {
		return fmt.Errorf("restoring %s: %w", e.OriginalPath, err)
	}
	os.Remove(e.InfoPath)
	return nil
}

// Lookup reads the .trashinfo record of a named entry.
func (b *Bin) Lookup(name string) (*Entry, error) {
	infoPath := filepath.Join(b.Root, infoDir, name+infoExt)
	f, err := os.Open(infoPath)
	if err != nil {
		return nil, fmt.Errorf("reading trash info for %s: %w", name, err)
	}
	defer f.Close()

	e := &Entry{
		Name:     name,
		Path:     filepath.Join(b.Root, filesDir, name),
		InfoPath: infoPath,
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "Path":
			p, err := url.PathUnescape(value)
			if err != nil {
				return nil, fmt.Errorf("decoding original path of %s: %w", name, err)
			}
			e.OriginalPath = filepath.FromSlash(p)
		case "DeletionDate":
			if t, err := time.ParseInLocation(deletionStamp, value, time.Local); err == nil {
				e.DeletedAt = t
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trash info for %s: %w", name, err)
	}
	if e.OriginalPath == "" {
		return nil, fmt.Errorf("trash info for %s has no Path entry", name)
	}
	return e, nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func (b *Bin) ensureLayout() error {
	if err := platform.SecureDir(b.Root); err != nil {
		return fmt.Errorf("preparing trash directory: %w", err)
	}
	for _, sub := range []string{filesDir, infoDir} {
		dir := filepath.Join(b.Root, sub)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating trash directory %s: %w", dir, err)
		}
	}
	return nil
}

func (b *Bin) reserve(base, original string, now time.Time) (string, string, error) {
	body := fmt.Sprintf("%s\nPath=%s\nDeletionDate=%s\n",
		infoHeader, (&url.URL{Path: filepath.ToSlash(original)}).EscapedPath(), now.Format(deletionStamp))

	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = base + "." + strconv.Itoa(i)
		}
		if _, err := os.Lstat(filepath.Join(b.Root, filesDir, name)); err == nil {
			continue
		}

		infoPath := filepath.Join(b.Root, infoDir, name+infoExt)
		f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("writing trash info %s: %w", infoPath, err)
		}
		if _, err := io.WriteString(f, body); err != nil {
			f.Close()
			os.Remove(infoPath)
			return "", "", fmt.Errorf("writing trash info %s: %w", infoPath, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(infoPath)
			return "", "", fmt.Errorf("writing trash info %s: %w", infoPath, err)
		}
		return name, infoPath, nil
	}
}
