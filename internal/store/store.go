// Package store defines the remote event store contract: a key-value record
// collection with merge writes, subtree deletes and full-snapshot push
// subscriptions. Paths are slash separated; the first segment names the
// collection, the second the record key, deeper segments address nested
// fields (for example "events/<id>/signups/<item>").
package store

import (
	"context"
	"strings"
)

// Record is one (key, raw value) pair inside a collection snapshot. The
// value carries no schema; malformed entries must be tolerated downstream.
type Record struct {
	Key   string
	Value map[string]any
}

// Snapshot is a full-collection push, ordered by record key.
type Snapshot []Record

// SnapshotFunc receives collection snapshots. A subscriber must treat the
// snapshot as read only.
type SnapshotFunc func(Snapshot)

// Subscription cancels delivery when no longer needed. After Unsubscribe
// returns, no further snapshots are delivered.
type Subscription interface {
	Unsubscribe()
}

// Store is the remote event store collaborator. Writes merge fields into
// the addressed subtree; deletes remove it. Neither assumes the change is
// visible in the next snapshot the caller observes.
type Store interface {
	Write(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	Subscribe(collection string, fn SnapshotFunc) (Subscription, error)
}

// SplitPath breaks a slash-separated path into its segments, dropping empty
// ones.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// Path joins segments into a store path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// Merge merges src into dst recursively. Nested maps merge key by key; any
// other value overwrites.
func Merge(dst, src map[string]any) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				Merge(dstMap, srcMap)
				continue
			}
			child := make(map[string]any, len(srcMap))
			Merge(child, srcMap)
			dst[k] = child
			continue
		}
		dst[k] = v
	}
}

// WriteAt merges fields into the subtree of doc addressed by segments,
// creating intermediate maps as needed.
func WriteAt(doc map[string]any, segments []string, fields map[string]any) {
	node := doc
	for _, seg := range segments {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	Merge(node, DeepCopy(fields))
}

// DeleteAt removes the subtree of doc addressed by segments. Absent
// subtrees are left alone.
func DeleteAt(doc map[string]any, segments []string) {
	if len(segments) == 0 {
		return
	}
	node := doc
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	delete(node, segments[len(segments)-1])
}

// DeepCopy returns a copy of m with all nested maps copied.
func DeepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = DeepCopy(nested)
			continue
		}
		out[k] = v
	}
	return out
}
