// Package postref parses external content post URLs of the form
// https://<host>/<service>/user/<user>/post/<post>
package postref

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	perr "mediarelay/internal/platform/errors"
)

// Hosts is the allow-list of remote content hosts
var Hosts = []string{"kemono.cr", "coomer.st"}

var pattern = regexp.MustCompile(`https://(?:kemono\.cr|coomer\.st)/[^/\s]+/user/[[:alnum:]_]+/post/\d+`)

// Ref identifies one remote post
type Ref struct {
	Domain  string `json:"domain"`
	Service string `json:"service"`
	UserID  string `json:"user_id"`
	PostID  string `json:"post_id"`
}

// AllowedHost reports whether host is in the allow-list
func AllowedHost(host string) bool { return slices.Contains(Hosts, host) }

// Allowed reports whether raw starts with an allow-listed https origin
func Allowed(raw string) bool {
	_, ok := hostOf(raw)
	return ok
}

func hostOf(raw string) (string, bool) {
	for _, h := range Hosts {
		if strings.HasPrefix(raw, "https://"+h+"/") {
			return h, true
		}
	}
	return "", false
}

// Parse turns a post URL into a Ref. Query strings and fragments are ignored
func Parse(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	host, ok := hostOf(raw)
	if !ok {
		return Ref{}, perr.InvalidArgf("host not allowed: %q", raw)
	}
	path := strings.TrimPrefix(raw, "https://"+host+"/")
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if len(parts) != 5 || parts[1] != "user" || parts[3] != "post" {
		return Ref{}, perr.InvalidArgf("unexpected post url shape: %q", raw)
	}
	for _, p := range []string{parts[0], parts[2], parts[4]} {
		if p == "" {
			return Ref{}, perr.InvalidArgf("empty segment in post url: %q", raw)
		}
	}
	return Ref{Domain: host, Service: parts[0], UserID: parts[2], PostID: parts[4]}, nil
}

// Extract returns every post URL found in free text, first occurrence order, without duplicates
func Extract(text string) []string {
	found := pattern.FindAllString(text, -1)
	out := make([]string, 0, len(found))
	for _, u := range found {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// PostURL is the public page of the post
func (r Ref) PostURL() string {
	return fmt.Sprintf("https://%s/%s/user/%s/post/%s", r.Domain, r.Service, r.UserID, r.PostID)
}

// UserURL is the public page of the post's author
func (r Ref) UserURL() string {
	return fmt.Sprintf("https://%s/%s/user/%s", r.Domain, r.Service, r.UserID)
}

// Key is a stable staging name for the post, so an interrupted fetch resumes in place
func (r Ref) Key() string {
	return strings.Join([]string{"kc", strings.ReplaceAll(r.Domain, ".", "-"), r.Service, r.UserID, r.PostID}, "_")
}

// String renders the ref for logs
func (r Ref) String() string { return r.Domain + "/" + r.Service + "/" + r.UserID + "/" + r.PostID }
