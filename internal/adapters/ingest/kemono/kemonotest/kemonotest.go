// Package kemonotest serves a scripted content API over httptest for package tests
package kemonotest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Post is a scripted post payload
type Post struct {
	Title       string
	Content     string
	File        *File
	Attachments []File
}

// File is a scripted file; Size overrides the advertised Content-Length when > 0
type File struct {
	Name string
	Path string
	Body []byte
	Size int64
}

// Server is a fake content API. Register content before issuing requests
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	posts    map[string]Post
	listings map[string][]string
	profiles map[string]string
	files    map[string]File
	status   map[string]int
	hits     map[string]int

	// Gate, when set, is called before a file body is written (tests block here)
	Gate func(path string)
}

// New starts a Server that is closed with the test
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		posts:    map[string]Post{},
		listings: map[string][]string{},
		profiles: map[string]string{},
		files:    map[string]File{},
		status:   map[string]int{},
		hits:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// AddPost registers a post and its files
func (s *Server) AddPost(service, user, post string, p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts["/api/v1/"+service+"/user/"+user+"/post/"+post] = p
	if p.File != nil {
		s.files["/data"+p.File.Path] = *p.File
	}
	for _, a := range p.Attachments {
		s.files["/data"+a.Path] = a
	}
}

// SetListing registers the newest-first id listing of a source
func (s *Server) SetListing(service, user string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings["/api/v1/"+service+"/user/"+user] = ids
}

// SetProfile registers an artist name
func (s *Server) SetProfile(service, user, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles["/api/v1/"+service+"/user/"+user+"/profile"] = name
}

// Fail makes path answer with status
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = status
}

// Hits returns how many requests (any method) path received
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Downloads returns how many GETs a /data path received
func (s *Server) Downloads(path string) int {
	return s.Hits("GET /data" + path)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	s.mu.Lock()
	s.hits[p]++
	s.hits[r.Method+" "+p]++
	status, failing := s.status[p]
	post, isPost := s.posts[p]
	ids, isListing := s.listings[p]
	name, isProfile := s.profiles[p]
	file, isFile := s.files[p]
	gate := s.Gate
	s.mu.Unlock()

	if failing {
		http.Error(w, "scripted failure", status)
		return
	}
	switch {
	case isPost:
		writeJSON(w, map[string]any{"post": encodePost(post)})
	case isListing:
		out := make([]map[string]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, map[string]string{"id": id, "title": "post " + id})
		}
		writeJSON(w, out)
	case isProfile:
		writeJSON(w, map[string]string{"id": "x", "name": name, "service": "x"})
	case isFile:
		size := int64(len(file.Body))
		if file.Size > 0 {
			size = file.Size
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
			return
		}
		if gate != nil {
			gate(strings.TrimPrefix(p, "/data"))
		}
		_, _ = w.Write(file.Body)
	default:
		http.NotFound(w, r)
	}
}

func encodePost(p Post) map[string]any {
	enc := func(f File) map[string]string { return map[string]string{"name": f.Name, "path": f.Path} }
	out := map[string]any{"title": p.Title, "content": p.Content}
	if p.File != nil {
		out["file"] = enc(*p.File)
	} else {
		out["file"] = map[string]string{}
	}
	atts := make([]map[string]string, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		atts = append(atts, enc(a))
	}
	out["attachments"] = atts
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
