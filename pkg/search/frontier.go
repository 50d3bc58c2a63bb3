package search

import (
	"cmp"
	"slices"
)

// entry is one frontier record. Several entries for the same node may
// coexist; the ones popped after the node was expanded are stale.
type entry struct {
	priority float64
	g        float64
	node     string
	path     []string
	seq      uint64
}

// less orders entries by priority, accumulated cost, node, path and finally
// insertion sequence.
func (a *entry) less(b *entry) bool {
	if c := cmp.Compare(a.priority, b.priority); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(a.g, b.g); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(a.node, b.node); c != 0 {
		return c < 0
	}
	if c := slices.Compare(a.path, b.path); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// frontier is a min-heap of entries implementing container/heap.Interface.
type frontier []*entry

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].less(f[j]) }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(*entry)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return e
}
