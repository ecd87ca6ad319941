// Package layout arranges graph nodes into a readable layered diagram using
// a Sugiyama-style algorithm: connected-component detection, longest-path
// level assignment, barycenter crossing minimization, and fixed-spacing
// coordinate assignment. Compute is a pure function: identical input always
// yields identical output, with ties broken by input order.
package layout

import "sort"

// NodeInfo is one node's id and rendered extent.
type NodeInfo struct {
	ID     string
	Width  float64
	Height float64
}

// Input is a snapshot of the (sub)graph to arrange. Edges are node-id pairs;
// port information is irrelevant to layout.
type Input struct {
	Nodes []NodeInfo
	Edges [][2]string
}

// Config holds the spacing constants for coordinate assignment.
type Config struct {
	StartX       float64
	StartY       float64
	LevelGap     float64 // horizontal gap between levels, added to the widest node of the previous level
	NodeGap      float64 // vertical gap between nodes within a level
	ComponentGap float64 // vertical gap between stacked components
}

// DefaultConfig returns the spacing used by the editor surface.
func DefaultConfig() Config {
	return Config{StartX: 100, StartY: 100, LevelGap: 120, NodeGap: 40, ComponentGap: 80}
}

// sweepPasses is the number of full forward+backward barycenter iterations.
const sweepPasses = 4

// Compute assigns a position to every input node. Components are laid out
// independently and stacked vertically, the component with the fewest roots
// first.
func Compute(input Input, cfg Config) map[string][2]float64 {
	positions := make(map[string][2]float64, len(input.Nodes))
	if len(input.Nodes) == 0 {
		return positions
	}

	g := buildGraph(input)
	components := g.components()

	offsetY := cfg.StartY
	for _, comp := range components {
		height := layoutComponent(g, comp, cfg, offsetY, positions)
		offsetY += height + cfg.ComponentGap
	}
	return positions
}

// nodeGraph is the internal index-based view of the input.
type nodeGraph struct {
	nodes []NodeInfo
	index map[string]int
	succ  [][]int // successors by node index
	pred  [][]int // predecessors by node index
}

func buildGraph(input Input) *nodeGraph {
	g := &nodeGraph{
		nodes: input.Nodes,
		index: make(map[string]int, len(input.Nodes)),
		succ:  make([][]int, len(input.Nodes)),
		pred:  make([][]int, len(input.Nodes)),
	}
	for i, n := range input.Nodes {
		g.index[n.ID] = i
	}
	for _, e := range input.Edges {
		from, okFrom := g.index[e[0]]
		to, okTo := g.index[e[1]]
		if !okFrom || !okTo || from == to {
			continue
		}
		g.succ[from] = append(g.succ[from], to)
		g.pred[to] = append(g.pred[to], from)
	}
	return g
}

// components partitions nodes into connected components, treating edges as
// undirected. Components are ordered by ascending root count (nodes with no
// in-component predecessor), ties by smallest member index.
func (g *nodeGraph) components() [][]int {
	seen := make([]bool, len(g.nodes))
	var comps [][]int

	for start := range g.nodes {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, n)
			for _, next := range g.succ[n] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
			for _, next := range g.pred[n] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}

	sort.SliceStable(comps, func(i, j int) bool {
		ri, rj := g.rootCount(comps[i]), g.rootCount(comps[j])
		if ri != rj {
			return ri < rj
		}
		return comps[i][0] < comps[j][0]
	})
	return comps
}

func (g *nodeGraph) rootCount(comp []int) int {
	count := 0
	for _, n := range comp {
		if len(g.pred[n]) == 0 {
			count++
		}
	}
	return count
}

// levels assigns a level to every component node by longest-path labeling:
// a Kahn-style sweep consuming in-degree counts, each node's level one past
// the maximum of its predecessors. Nodes the sweep never reaches sit inside
// a cycle and are assigned maxAssignedLevel+1; cycles are broken arbitrarily
// rather than rejected.
func (g *nodeGraph) levels(comp []int) map[int]int {
	inComp := make(map[int]bool, len(comp))
	for _, n := range comp {
		inComp[n] = true
	}

	indeg := make(map[int]int, len(comp))
	for _, n := range comp {
		for _, p := range g.pred[n] {
			if inComp[p] {
				indeg[n]++
			}
		}
	}

	level := make(map[int]int, len(comp))
	swept := make(map[int]bool, len(comp))
	var queue []int
	for _, n := range comp {
		if indeg[n] == 0 {
			level[n] = 0
			queue = append(queue, n)
		}
	}

	maxLevel := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		swept[n] = true
		if level[n] > maxLevel {
			maxLevel = level[n]
		}
		for _, next := range g.succ[n] {
			if !inComp[next] {
				continue
			}
			if level[n]+1 > level[next] {
				level[next] = level[n] + 1
			}
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	for _, n := range comp {
		if !swept[n] {
			level[n] = maxLevel + 1
		}
	}
	return level
}

// order arranges each level's nodes to minimize edge crossings: repeated
// forward and backward barycenter sweeps against the adjacent level. Nodes
// without neighbors in the adjacent level keep their relative order.
func (g *nodeGraph) order(comp []int, level map[int]int) [][]int {
	maxLevel := 0
	for _, n := range comp {
		if level[n] > maxLevel {
			maxLevel = level[n]
		}
	}

	layers := make([][]int, maxLevel+1)
	for _, n := range comp {
		l := level[n]
		layers[l] = append(layers[l], n)
	}
	for _, layer := range layers {
		sort.Ints(layer)
	}

	pos := make(map[int]int, len(comp))
	refresh := func(layer []int) {
		for i, n := range layer {
			pos[n] = i
		}
	}
	for _, layer := range layers {
		refresh(layer)
	}

	sortByBarycenter := func(layer []int, neighbors func(int) []int) {
		type entry struct {
			node int
			bary float64
			has  bool
		}
		entries := make([]entry, len(layer))
		for i, n := range layer {
			sum, count := 0.0, 0
			for _, adj := range neighbors(n) {
				if _, ok := pos[adj]; ok && level[adj] != level[n] {
					sum += float64(pos[adj])
					count++
				}
			}
			entries[i] = entry{node: n, bary: float64(i), has: count > 0}
			if count > 0 {
				entries[i].bary = sum / float64(count)
			}
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].has || !entries[j].has {
				return false // isolated nodes keep prior relative order
			}
			return entries[i].bary < entries[j].bary
		})
		for i := range entries {
			layer[i] = entries[i].node
		}
		refresh(layer)
	}

	for pass := 0; pass < sweepPasses; pass++ {
		for l := 1; l <= maxLevel; l++ {
			sortByBarycenter(layers[l], func(n int) []int { return g.pred[n] })
		}
		for l := maxLevel - 1; l >= 0; l-- {
			sortByBarycenter(layers[l], func(n int) []int { return g.succ[n] })
		}
	}
	return layers
}

// layoutComponent positions one component starting at the given vertical
// offset and returns the component's total height.
func layoutComponent(g *nodeGraph, comp []int, cfg Config, offsetY float64, positions map[string][2]float64) float64 {
	level := g.levels(comp)
	layers := g.order(comp, level)

	// Tallest level determines the component height for vertical centering.
	layerHeight := func(layer []int) float64 {
		h := 0.0
		for i, n := range layer {
			if i > 0 {
				h += cfg.NodeGap
			}
			h += g.nodes[n].Height
		}
		return h
	}
	maxHeight := 0.0
	for _, layer := range layers {
		if h := layerHeight(layer); h > maxHeight {
			maxHeight = h
		}
	}

	x := cfg.StartX
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		widest := 0.0
		for _, n := range layer {
			if g.nodes[n].Width > widest {
				widest = g.nodes[n].Width
			}
		}

		y := offsetY + (maxHeight-layerHeight(layer))/2
		for _, n := range layer {
			positions[g.nodes[n].ID] = [2]float64{x, y}
			y += g.nodes[n].Height + cfg.NodeGap
		}
		x += widest + cfg.LevelGap
	}
	return maxHeight
}
