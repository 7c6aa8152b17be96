package renderer

import (
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// patchKeyedChildren reconciles two child lists sharing container.
// anchor is the host node following the list, or nil if the list ends the
// container.
//
// Matching nodes are first patched in place from both ends. What remains
// is either pure insertion, pure removal, or a middle window reconciled by
// key, where only nodes off the longest increasing subsequence of old
// positions are moved.
func (r *Renderer) patchKeyedChildren(c1, c2 []*vdom.VNode, container, anchor host.Handle) {
	i := 0
	e1 := len(c1) - 1
	e2 := len(c2) - 1

	// Shared prefix.
	for i <= e1 && i <= e2 && c1[i].Key == c2[i].Key {
		r.patch(c1[i], c2[i], container, r.anchorAt(c1, i+1, anchor))
		i++
	}

	// Shared suffix.
	for i <= e1 && i <= e2 && c1[e1].Key == c2[e2].Key {
		r.patch(c1[e1], c2[e2], container, r.anchorAt(c2, e2+1, anchor))
		e1--
		e2--
	}

	// Only new nodes left.
	if i > e1 {
		if i <= e2 {
			at := r.anchorAt(c2, e2+1, anchor)
			for ; i <= e2; i++ {
				r.patch(nil, c2[i], container, at)
			}
		}
		return
	}

	// Only old nodes left.
	if i > e2 {
		for ; i <= e1; i++ {
			r.unmount(c1[i], true)
		}
		return
	}

	r.patchMiddle(c1, c2, i, e1, e2, container, anchor)
}

// patchMiddle reconciles c1[start:e1+1] against c2[start:e2+1].
func (r *Renderer) patchMiddle(c1, c2 []*vdom.VNode, start, e1, e2 int, container, anchor host.Handle) {
	keyToNew := make(map[string]int, e2-start+1)
	for j := start; j <= e2; j++ {
		key := c2[j].Key
		if key == "" {
			continue
		}
		if _, dup := keyToNew[key]; dup {
			r.report(r.diagnose("R001", "").With("key", key).With("index", j))
			continue
		}
		keyToNew[key] = j
	}

	toPatch := e2 - start + 1
	// source[k] is the old index of c2[start+k], or -1 for new nodes.
	source := make([]int, toPatch)
	for k := range source {
		source[k] = -1
	}

	patched := 0
	moved := false
	maxNewIndexSoFar := 0

	for j := start; j <= e1; j++ {
		old := c1[j]
		if patched >= toPatch {
			r.unmount(old, true)
			continue
		}

		newIndex := -1
		if old.Key != "" {
			if k, ok := keyToNew[old.Key]; ok {
				newIndex = k
			}
		}
		if newIndex >= 0 && source[newIndex-start] != -1 {
			// Duplicate key among the old children.
			r.report(r.diagnose("R001", "").With("key", old.Key).With("index", j))
			newIndex = -1
		}
		if newIndex < 0 || !vdom.SameType(old, c2[newIndex]) {
			r.unmount(old, true)
			continue
		}

		source[newIndex-start] = j
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.patch(old, c2[newIndex], container, nil)
		patched++
	}

	var seq []int
	if moved {
		seq = longestIncreasingSubsequence(source)
	}
	s := len(seq) - 1

	// Walk right to left so the right neighbour is always in place.
	for k := toPatch - 1; k >= 0; k-- {
		idx := start + k
		next := c2[idx]
		at := r.anchorAt(c2, idx+1, anchor)

		switch {
		case source[k] == -1:
			r.patch(nil, next, container, at)
		case moved:
			if s < 0 || k != seq[s] {
				r.move(next, container, at)
				r.metrics.ObserveMove()
			} else {
				s--
			}
		}
	}
}

// anchorAt returns the first host node of children[i:], or fallback.
func (r *Renderer) anchorAt(children []*vdom.VNode, i int, fallback host.Handle) host.Handle {
	for ; i < len(children); i++ {
		if h := r.firstHost(children[i]); h != nil {
			return h
		}
	}
	return fallback
}
