package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// normalize turns a texture name into a lookup key: forward slashes, lower
// case, no leading slash.
func normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean("/" + name)
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

// DirSource reads files under a directory. Lookups ignore case, matching
// the game's data files, which are named inconsistently.
type DirSource struct {
	root string

	once  sync.Once
	index map[string]string // normalized name -> path on disk
	err   error
}

// NewDirSource creates a source rooted at dir. The directory is indexed on
// first use.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

// Root returns the source directory.
func (d *DirSource) Root() string {
	return d.root
}

func (d *DirSource) build() {
	d.index = make(map[string]string)
	d.err = filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		d.index[normalize(filepath.ToSlash(rel))] = p
		return nil
	})
}

// ReadFile implements Source.
func (d *DirSource) ReadFile(name string) ([]byte, error) {
	d.once.Do(d.build)
	if d.err != nil {
		return nil, fmt.Errorf("indexing %s: %w", d.root, d.err)
	}
	p, ok := d.index[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return os.ReadFile(p)
}

// Names returns every indexed file name in normalized form.
func (d *DirSource) Names() ([]string, error) {
	d.once.Do(d.build)
	if d.err != nil {
		return nil, d.err
	}
	names := make([]string, 0, len(d.index))
	for n := range d.index {
		names = append(names, n)
	}
	return names, nil
}

// MemSource is an in-memory source keyed by name, ignoring case.
type MemSource map[string][]byte

// ReadFile implements Source.
func (m MemSource) ReadFile(name string) ([]byte, error) {
	want := normalize(name)
	for k, v := range m {
		if normalize(k) == want {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}
