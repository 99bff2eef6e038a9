package loader

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// DemoOrganization is the id of the bundled sample organization.
const DemoOrganization = "acme"

//go:embed demo
var demoFS embed.FS

// Demo returns a static loader serving the bundled sample organization in
// every view mode. Documents live at demo/{org}/{mode}.{ext}.
func Demo() (*Static, error) {
	s := NewStatic(0)
	err := fs.WalkDir(demoFS, "demo", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		format, err := hierarchy.FormatFromPath(p)
		if err != nil {
			return err
		}
		f, err := demoFS.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := hierarchy.ReadDocument(f, format)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		root, err := doc.Tree()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		org := path.Base(path.Dir(p))
		mode := hierarchy.ViewMode(strings.TrimSuffix(path.Base(p), path.Ext(p)))
		s.Set(org, mode, root)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
