package output

import (
	"log/slog"
)

// Sink receives generated files. Adding a file whose identity is already
// present replaces it in place.
type Sink interface {
	AddExtraFile(f File)
	OverwriteExtraFile(f File)
}

// Collection is the Sink used by a compilation. It keeps first-add order.
type Collection struct {
	files       []File
	index       map[string]int
	overwritten map[string]bool
	log         *slog.Logger
}

// NewCollection creates an empty collection.
func NewCollection(log *slog.Logger) *Collection {
	if log == nil {
		log = slog.Default()
	}
	return &Collection{
		index:       make(map[string]int),
		overwritten: make(map[string]bool),
		log:         log,
	}
}

// AddExtraFile implements Sink.
func (c *Collection) AddExtraFile(f File) {
	id := f.Identity()
	if i, ok := c.index[id]; ok {
		c.log.Debug("replacing generated file", "file", id)
		c.files[i] = f
		return
	}
	c.index[id] = len(c.files)
	c.files = append(c.files, f)
}

// OverwriteExtraFile implements Sink. It is used for files that replace a
// document from the source pack, such as a modified entity.
func (c *Collection) OverwriteExtraFile(f File) {
	c.overwritten[f.Identity()] = true
	c.AddExtraFile(f)
}

// Lookup returns the file with the given identity.
func (c *Collection) Lookup(identity string) (File, bool) {
	i, ok := c.index[identity]
	if !ok {
		return nil, false
	}
	return c.files[i], true
}

// Overwrites reports whether identity replaces a source document.
func (c *Collection) Overwrites(identity string) bool {
	return c.overwritten[identity]
}

// Files returns every file in first-add order.
func (c *Collection) Files() []File {
	return append([]File(nil), c.files...)
}

// Reachable returns the files to emit. Command files are kept only when
// they are a root, marked in use, or called from a kept command file.
// Other files are always kept.
func (c *Collection) Reachable(roots ...string) []File {
	byPath := make(map[string]*CommandFile)
	for _, f := range c.files {
		if cf, ok := f.(*CommandFile); ok {
			byPath[cf.Path()] = cf
		}
	}

	keep := make(map[string]bool)
	var queue []string
	visit := func(p string) {
		if _, ok := byPath[p]; ok && !keep[p] {
			keep[p] = true
			queue = append(queue, p)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	for p, cf := range byPath {
		if cf.InUse {
			visit(p)
		}
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, ref := range byPath[p].References() {
			visit(ref)
		}
	}

	var out []File
	for _, f := range c.files {
		if cf, ok := f.(*CommandFile); ok {
			if !keep[cf.Path()] {
				c.log.Debug("dropping unreachable function", "function", cf.Path())
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
