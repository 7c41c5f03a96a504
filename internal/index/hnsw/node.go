package hnsw

// node is a single vertex in the graph. links[level] holds the
// internal arena indices of its neighbors at that level; only levels
// 0..node.level exist.
type node struct {
	id     int64
	vector []float32
	level  int
	links  [][]int32
}
