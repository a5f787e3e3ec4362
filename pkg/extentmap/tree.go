package extentmap

import "github.com/google/btree"

// extentTree is a thin wrapper around a generic B-tree, keyed by logical
// offset. It exposes only the operations the slice primitives need: point
// lookup, insert/replace, delete, and ordered range iteration. Keeping the
// B-tree behind this narrow surface mirrors how the corpus wraps tree
// implementations elsewhere instead of threading btree.Item concerns
// through the algorithm code.
type extentTree struct {
	bt *btree.BTreeG[logicalExtent]
}

func lessByOffset(a, b logicalExtent) bool {
	return a.fsOffset < b.fsOffset
}

func newExtentTree() *extentTree {
	return &extentTree{bt: btree.NewG(32, lessByOffset)}
}

func (t *extentTree) Len() int {
	return t.bt.Len()
}

func (t *extentTree) Get(fsOffset uint64) (PExtent, bool) {
	item, ok := t.bt.Get(logicalExtent{fsOffset: fsOffset})
	return item.extent, ok
}

func (t *extentTree) Set(fsOffset uint64, e PExtent) {
	t.bt.ReplaceOrInsert(logicalExtent{fsOffset: fsOffset, extent: e})
}

func (t *extentTree) Delete(fsOffset uint64) {
	t.bt.Delete(logicalExtent{fsOffset: fsOffset})
}

// floor returns the entry with the greatest key <= fsOffset, if any.
func (t *extentTree) floor(fsOffset uint64) (logicalExtent, bool) {
	var found logicalExtent
	ok := false
	t.bt.DescendLessOrEqual(logicalExtent{fsOffset: fsOffset}, func(item logicalExtent) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

// ceil returns the entry with the smallest key >= fsOffset, if any.
func (t *extentTree) ceil(fsOffset uint64) (logicalExtent, bool) {
	var found logicalExtent
	ok := false
	t.bt.AscendGreaterOrEqual(logicalExtent{fsOffset: fsOffset}, func(item logicalExtent) bool {
		found, ok = item, true
		return false
	})
	return found, ok
}

// overlapping returns, in ascending key order, every entry whose interval
// can intersect [lo, hi), plus the floor entry if it ends exactly at lo: a
// written extent touching the request's start contributes no bytes to the
// request but still needs to be visible to callers that seed a left-side
// hint from the extent immediately preceding the cursor.
func (t *extentTree) overlapping(lo, hi uint64) []logicalExtent {
	var out []logicalExtent

	if f, ok := t.floor(lo); ok && f.logicalEnd() >= lo {
		out = append(out, f)
	}

	t.bt.AscendGreaterOrEqual(logicalExtent{fsOffset: lo}, func(item logicalExtent) bool {
		if item.fsOffset >= hi {
			return false
		}
		if len(out) > 0 && out[len(out)-1].fsOffset == item.fsOffset {
			return true
		}
		out = append(out, item)
		return true
	})

	return out
}

// ascend calls visit for every entry in ascending key order, stopping early
// if visit returns false.
func (t *extentTree) ascend(visit func(logicalExtent) bool) {
	t.bt.Ascend(visit)
}
