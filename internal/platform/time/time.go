// Package time holds the timestamp formats that end up in exchange file names
package time

import "time"

// StampLayout is a compact, sortable UTC layout for job folder names
const StampLayout = "20060102T150405Z"

// Stamp formats t in UTC with StampLayout
func Stamp(t time.Time) string { return t.UTC().Format(StampLayout) }

