package executor

import (
	"fmt"
	"path"

	"github.com/zurustar/mccompiled/pkg/fileutil"
	"github.com/zurustar/mccompiled/pkg/jsondoc"
	"github.com/zurustar/mccompiled/pkg/output"
)

// EntityFolder is where entity documents live inside a behaviour pack.
const EntityFolder = "entities"

// dirEntities reads entity documents from the project's entity directory.
// A document already edited during this compilation is returned instead of
// the pristine one, so several binds on one entity accumulate.
type dirEntities struct {
	fs   fileutil.FileSystem
	dir  string
	sink *output.Collection
}

func (d *dirEntities) Entity(name string) (*output.JSONFile, error) {
	id := path.Join(EntityFolder, name+".json")
	if f, ok := d.sink.Lookup(id); ok {
		if jf, ok := f.(*output.JSONFile); ok {
			return jf, nil
		}
	}
	data, err := d.fs.ReadFile(path.Join(d.dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", name, err)
	}
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", name, err)
	}
	return &output.JSONFile{Path: id, Doc: doc}, nil
}

// noEntities is the entity source of a project without an entity directory.
type noEntities struct{}

func (noEntities) Entity(name string) (*output.JSONFile, error) {
	return nil, fmt.Errorf("no entity directory is configured, cannot load %q", name)
}
