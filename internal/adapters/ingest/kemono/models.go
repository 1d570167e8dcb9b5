package kemono

// FileEntry is a file or attachment listed on a post
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Post is the subset of the post payload the relay uses
type Post struct {
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	File        *FileEntry  `json:"file"`
	Attachments []FileEntry `json:"attachments"`
}

type postEnvelope struct {
	Post Post `json:"post"`
}

// Files returns the primary file followed by attachments, dropping empty entries
func (p Post) Files() []FileEntry {
	out := make([]FileEntry, 0, len(p.Attachments)+1)
	if p.File != nil && p.File.Path != "" {
		out = append(out, *p.File)
	}
	for _, a := range p.Attachments {
		if a.Path != "" {
			out = append(out, a)
		}
	}
	return out
}

// PostSummary is one entry of a source's post listing
type PostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Profile is the artist profile
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Service string `json:"service"`
}
