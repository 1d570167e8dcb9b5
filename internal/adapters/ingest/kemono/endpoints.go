package kemono

import (
	"context"
	"fmt"
	"net/url"

	"mediarelay/internal/core/postref"
)

// Post fetches the metadata for one post
func (c *Client) Post(ctx context.Context, ref postref.Ref) (Post, error) {
	u := fmt.Sprintf("%s/api/v1/%s/user/%s/post/%s",
		c.base(ref.Domain), url.PathEscape(ref.Service), url.PathEscape(ref.UserID), url.PathEscape(ref.PostID))
	var out postEnvelope
	if err := c.getJSON(ctx, u, "post "+ref.String(), &out); err != nil {
		return Post{}, err
	}
	return out.Post, nil
}

// Recent lists a source's posts as returned by the API, newest first
func (c *Client) Recent(ctx context.Context, domain, service, user string) ([]PostSummary, error) {
	u := fmt.Sprintf("%s/api/v1/%s/user/%s", c.base(domain), url.PathEscape(service), url.PathEscape(user))
	var out []PostSummary
	if err := c.getJSON(ctx, u, "posts "+domain+"/"+service+"/"+user, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile fetches the artist profile for a source
func (c *Client) Profile(ctx context.Context, domain, service, user string) (Profile, error) {
	u := fmt.Sprintf("%s/api/v1/%s/user/%s/profile", c.base(domain), url.PathEscape(service), url.PathEscape(user))
	var out Profile
	if err := c.getJSON(ctx, u, "profile "+domain+"/"+service+"/"+user, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// FileURL builds the download URL for a file path listed in a post
func (c *Client) FileURL(domain, path string) string {
	return c.base(domain) + "/data" + path
}
