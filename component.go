package osm2graph

import (
	"container/heap"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

type ComponentFilterKind uint16

const (
	COMPONENTS_KEEP_ALL = ComponentFilterKind(iota + 1)
	COMPONENTS_LARGEST
	COMPONENTS_TOP_K
	COMPONENTS_LEAST_K
)

func (iotaIdx ComponentFilterKind) String() string {
	return [...]string{"keep_all", "largest", "top_k", "least_k"}[iotaIdx-1]
}

// ComponentFilter selects which weakly connected components survive.
type ComponentFilter struct {
	kind ComponentFilterKind
	k    int
}

func NewKeepAllComponents() ComponentFilter {
	return ComponentFilter{kind: COMPONENTS_KEEP_ALL}
}

func NewLargestComponent() ComponentFilter {
	return ComponentFilter{kind: COMPONENTS_LARGEST}
}

func NewTopKComponents(k int) ComponentFilter {
	return ComponentFilter{kind: COMPONENTS_TOP_K, k: k}
}

func NewLeastKComponents(k int) ComponentFilter {
	return ComponentFilter{kind: COMPONENTS_LEAST_K, k: k}
}

type componentCandidate struct {
	index int
	size  int
}

// componentHeap is a bounded heap of component candidates. The root is
// the worst kept candidate, so it takes O(n log k) to select k out of
// n components.
type componentHeap struct {
	items []componentCandidate
	worse func(a, b componentCandidate) bool
}

func (h *componentHeap) Len() int           { return len(h.items) }
func (h *componentHeap) Less(i, j int) bool { return h.worse(h.items[i], h.items[j]) }
func (h *componentHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *componentHeap) Push(x interface{}) { h.items = append(h.items, x.(componentCandidate)) }
func (h *componentHeap) Pop() interface{} {
	last := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return last
}

// selectComponents returns indices of the components to keep, sorted
func (filter ComponentFilter) selectComponents(components [][]NodeID) ([]int, error) {
	switch filter.kind {
	case COMPONENTS_KEEP_ALL:
		kept := make([]int, len(components))
		for i := range components {
			kept[i] = i
		}
		return kept, nil
	case COMPONENTS_LARGEST:
		return boundedSelect(components, 1, largerComponent), nil
	case COMPONENTS_TOP_K:
		if filter.k < 1 {
			return nil, errors.Errorf("Components number must be positive, but got %d", filter.k)
		}
		return boundedSelect(components, filter.k, largerComponent), nil
	case COMPONENTS_LEAST_K:
		if filter.k < 1 {
			return nil, errors.Errorf("Components number must be positive, but got %d", filter.k)
		}
		return boundedSelect(components, filter.k, smallerComponent), nil
	default:
		return nil, errors.Errorf("Unknown component filter kind: %d", filter.kind)
	}
}

// largerComponent prefers bigger components; earlier enumeration wins
// ties
func largerComponent(a, b componentCandidate) bool {
	if a.size != b.size {
		return a.size > b.size
	}
	return a.index < b.index
}

// smallerComponent prefers smaller components; earlier enumeration
// wins ties
func smallerComponent(a, b componentCandidate) bool {
	if a.size != b.size {
		return a.size < b.size
	}
	return a.index < b.index
}

func boundedSelect(components [][]NodeID, k int, better func(a, b componentCandidate) bool) []int {
	// Root of the heap is the worst candidate seen so far
	bounded := &componentHeap{worse: func(a, b componentCandidate) bool { return better(b, a) }}
	heap.Init(bounded)
	for i, component := range components {
		heap.Push(bounded, componentCandidate{index: i, size: len(component)})
		if bounded.Len() > k {
			heap.Pop(bounded)
		}
	}
	kept := make([]int, 0, bounded.Len())
	for _, item := range bounded.items {
		kept = append(kept, item.index)
	}
	sort.Ints(kept)
	return kept
}

// filterComponents disconnects every node outside the components kept
// by the filter
func (graph *Graph) filterComponents(filter ComponentFilter, verbose bool) error {
	if filter.kind == COMPONENTS_KEEP_ALL {
		return nil
	}
	if verbose {
		fmt.Printf("Filtering weakly connected components (%s)... ", filter.kind)
	}
	st := time.Now()
	components := weaklyConnectedComponents(graph)
	kept, err := filter.selectComponents(components)
	if err != nil {
		return errors.Wrap(err, "Can't select components")
	}
	keep := make(map[NodeID]struct{})
	for _, index := range kept {
		for _, id := range components[index] {
			keep[id] = struct{}{}
		}
	}
	removed := 0
	for _, id := range graph.ConnectedNodes() {
		if _, ok := keep[id]; ok {
			continue
		}
		if err := graph.DisconnectNode(id, false); err != nil {
			return errors.Wrapf(err, "Can't disconnect %s", id)
		}
		removed++
	}
	if verbose {
		fmt.Printf("Done in %v. Components: %d, kept: %d, removed nodes: %d\n", time.Since(st), len(components), len(kept), removed)
	}
	return nil
}
