package hnsw

import (
	"container/heap"

	"github.com/alpvec/annlib/internal/topk"
)

// candidate pairs an internal node index with its distance to the
// vector currently driving a search.
type candidate struct {
	ID   int32
	Dist float32
}

func lessCandidate(a, b candidate) bool { return a.Dist < b.Dist }

// explore is a small unbounded min-heap used to drive beam search
// traversal order; it is distinct from the bounded result queue.
type explore struct{ items []candidate }

func (e *explore) Len() int           { return len(e.items) }
func (e *explore) Less(i, j int) bool { return e.items[i].Dist < e.items[j].Dist }
func (e *explore) Swap(i, j int)      { e.items[i], e.items[j] = e.items[j], e.items[i] }
func (e *explore) Push(x any)         { e.items = append(e.items, x.(candidate)) }
func (e *explore) Pop() any {
	old := e.items
	n := len(old)
	item := old[n-1]
	e.items = old[:n-1]
	return item
}

// beamSearch explores level starting from entry, maintaining an
// unbounded min-heap of candidates to visit and a bounded (width ef)
// result set. It stops once the next candidate to explore is already
// farther than the current worst kept result, once the result is
// full.
func (ix *Index) beamSearch(entry int32, query []float32, ef int, level int) *topk.Queue[candidate] {
	result := topk.New(ef, lessCandidate)

	visited := make(map[int32]bool, ef*2)
	d0 := ix.distFn(query, ix.nodes[entry].vector)
	start := candidate{ID: entry, Dist: d0}

	toExplore := &explore{items: []candidate{start}}
	visited[entry] = true
	result.PushValue(start)

	for toExplore.Len() > 0 {
		cur := heap.Pop(toExplore).(candidate)

		if worst, ok := result.Top(); ok && result.Len() >= ef && cur.Dist > worst.Dist {
			break
		}

		n := ix.nodes[cur.ID]
		if level >= len(n.links) {
			continue
		}
		for _, nb := range n.links[level] {
			if visited[nb] {
				continue
			}
			visited[nb] = true

			d := ix.distFn(query, ix.nodes[nb].vector)
			worst, ok := result.Top()
			if result.Len() < ef || !ok || d < worst.Dist {
				c := candidate{ID: nb, Dist: d}
				heap.Push(toExplore, c)
				result.PushValue(c)
			}
		}
	}

	return result
}
