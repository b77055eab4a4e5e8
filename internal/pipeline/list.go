package pipeline

import (
	"github.com/calvinalkan/mdsummary/internal/content"
	"github.com/calvinalkan/mdsummary/internal/frontmatter"
)

// Listing describes a located document without modifying it.
type Listing struct {
	Path       string // Relative to the content root, slash separated.
	Title      string
	Summary    string
	HasSummary bool
	Err        error // Set when the document could not be read.
}

// List reads every document below root and reports its summary state.
func (p *Pipeline) List(root string) ([]Listing, error) {
	paths, err := content.Locate(p.fs, root, func(path string, err error) {
		p.log.Error("skipping unreadable directory", "path", p.rel(root, path), "error", err)
	})
	if err != nil {
		return nil, err
	}

	out := make([]Listing, 0, len(paths))

	for _, path := range paths {
		l := Listing{Path: p.rel(root, path)}

		data, err := p.fs.ReadFile(path)
		if err != nil {
			l.Err = err
			out = append(out, l)

			continue
		}

		doc := frontmatter.Split(string(data))
		l.Title = Title(doc, path)
		l.Summary, l.HasSummary = doc.Summary()

		out = append(out, l)
	}

	return out, nil
}
