// Package exchange owns the on-disk hand-off area shared by every producer and the courier.
//
//	<root>/kc-links/      link sentinels, one URL per .txt file
//	<root>/messages_tmp/  staging directories, private to the producer that created them
//	<root>/messages/      published jobs, visible to the delivery chunker
//	<root>/delivered/     fully sent jobs awaiting removal
//
// A job becomes visible only through a single rename from messages_tmp to messages.
package exchange

import (
	"os"
	"path/filepath"
	"strings"

	"mediarelay/internal/platform/config"
	perr "mediarelay/internal/platform/errors"

	"github.com/google/uuid"
)

// Directory names under the exchange root
const (
	LinksDir     = "kc-links"
	StagingDir   = "messages_tmp"
	OutgoingDir  = "messages"
	DeliveredDir = "delivered"
)

// Layout resolves the exchange directories
type Layout struct {
	Root      string
	Links     string
	Staging   string
	Outgoing  string
	Delivered string
}

// NewLayout derives every directory from root
func NewLayout(root string) Layout {
	root = filepath.Clean(root)
	return Layout{
		Root:      root,
		Links:     filepath.Join(root, LinksDir),
		Staging:   filepath.Join(root, StagingDir),
		Outgoing:  filepath.Join(root, OutgoingDir),
		Delivered: filepath.Join(root, DeliveredDir),
	}
}

// FromConfig reads RELAY_EXCHANGE_ROOT (default ./exchange) plus optional per-directory overrides.
// Staging and Outgoing must share a filesystem for the publish rename to be atomic
func FromConfig(cfg config.Conf) Layout {
	c := cfg.Prefix("RELAY_EXCHANGE_")
	l := NewLayout(c.MayPath("ROOT", "exchange"))
	l.Links = c.MayPath("LINKS_DIR", l.Links)
	l.Staging = c.MayPath("STAGING_DIR", l.Staging)
	l.Outgoing = c.MayPath("OUTGOING_DIR", l.Outgoing)
	l.Delivered = c.MayPath("DELIVERED_DIR", l.Delivered)
	return l
}

// Ensure creates every directory in the layout
func (l Layout) Ensure() error {
	for _, d := range []string{l.Links, l.Staging, l.Outgoing, l.Delivered} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "create exchange dir %s", d)
		}
	}
	return nil
}

// NewName returns prefix_<uuid>, unique across processes
func NewName(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "_" + uuid.NewString()
}

// validName rejects anything that is not a single path element
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return perr.InvalidArgf("invalid job name %q", name)
	}
	return nil
}
