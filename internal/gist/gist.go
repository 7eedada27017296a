package gist

import "time"

// File is a single named file inside a gist.
type File struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
	RawURL   string `json:"raw_url,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// Owner identifies the account a gist belongs to.
type Owner struct {
	Login string `json:"login,omitempty"`
}

// Gist is a versioned text-snippet document on the storage backend.
type Gist struct {
	ID          string           `json:"id,omitempty"`
	Description string           `json:"description,omitempty"`
	Public      bool             `json:"public"`
	HTMLURL     string           `json:"html_url,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at,omitempty"`
	Owner       *Owner           `json:"owner,omitempty"`
	Files       map[string]*File `json:"files,omitempty"`
}

// Gists is a list of gists with lookup helpers.
type Gists struct {
	Items []*Gist
}

func (g *Gists) Len() int {
	return len(g.Items)
}

// WithFile returns the subset of gists containing a file with the exact name.
func (g *Gists) WithFile(filename string) *Gists {
	matched := make([]*Gist, 0, len(g.Items))
	for _, gist := range g.Items {
		if gist == nil {
			continue
		}
		if _, ok := gist.Files[filename]; ok {
			matched = append(matched, gist)
		}
	}
	return &Gists{Items: matched}
}

// File returns the named file or nil.
func (g *Gist) File(filename string) *File {
	if g == nil {
		return nil
	}
	return g.Files[filename]
}
