package scan

import "time"

// FilterAge drops matched entries that are not strictly older than the
// cutoff, and with them any ancestor left without a retained descendant.
// days <= 0 disables filtering. The root is always retained.
//
// The boundary is exclusive: an entry modified exactly days ago is kept on
// disk, not deleted.
func FilterAge(root *Entry, days int, now time.Time) *Entry {
	if root == nil || days <= 0 {
		return root
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	keepOlder(root, cutoff)
	root.finalize()
	return root
}

// keepOlder reports whether the entry survives the filter.
func keepOlder(e *Entry, cutoff time.Time) bool {
	if e.Protected {
		return true
	}
	if e.Matched() {
		// A zero ModTime means the timestamp could not be read; keep the
		// entry on disk rather than assume it is old.
		return !e.ModTime.IsZero() && e.ModTime.Before(cutoff)
	}
	kept := e.Children[:0]
	for _, c := range e.Children {
		if keepOlder(c, cutoff) {
			kept = append(kept, c)
		}
	}
	e.Children = kept
	return len(e.Children) > 0
}
