// Package model defines core data structures for gfapath2fa.
package model

// Orientation is the strand a path traverses a segment on.
type Orientation int

const (
	Forward Orientation = iota
	Reverse
)

// String returns the P-line marker for o: "+" or "-".
func (o Orientation) String() string {
	if o == Reverse {
		return "-"
	}
	return "+"
}

// PathKind records which line type a path was read from.
type PathKind string

const (
	PathLine PathKind = "P"
	WalkLine PathKind = "W"
)

// SegmentRef is one step of a path: a segment name and the strand it is read on.
type SegmentRef struct {
	Name        string
	Orientation Orientation
}

// Segment is a named DNA fragment read from an S-line.
type Segment struct {
	Name     string
	Sequence string
	Line     int
}

// Path is an ordered traversal of segments read from a P- or W-line.
// Refs are unresolved until the graph is fully scanned.
type Path struct {
	Name string
	Kind PathKind
	Refs []SegmentRef
	Line int
}

// Record is a resolved path: its name and the concatenated sequence.
type Record struct {
	Name     string
	Sequence string
}

// Graph holds the segment table and the path table of one GFA file.
// Paths iterate in the order they were added, which is file order.
type Graph struct {
	segments map[string]Segment
	paths    []Path
	pathIdx  map[string]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		segments: make(map[string]Segment),
		pathIdx:  make(map[string]int),
	}
}

// AddSegment inserts s. It reports false, leaving the table unchanged,
// if a segment with the same name is already present.
func (g *Graph) AddSegment(s Segment) bool {
	if _, dup := g.segments[s.Name]; dup {
		return false
	}
	g.segments[s.Name] = s
	return true
}

// AddPath appends p. It reports false, leaving the table unchanged,
// if a path with the same name is already present.
func (g *Graph) AddPath(p Path) bool {
	if _, dup := g.pathIdx[p.Name]; dup {
		return false
	}
	g.pathIdx[p.Name] = len(g.paths)
	g.paths = append(g.paths, p)
	return true
}

// Segment looks up a segment by name.
func (g *Graph) Segment(name string) (Segment, bool) {
	s, ok := g.segments[name]
	return s, ok
}

// Path looks up a path by name.
func (g *Graph) Path(name string) (Path, bool) {
	i, ok := g.pathIdx[name]
	if !ok {
		return Path{}, false
	}
	return g.paths[i], true
}

// Paths returns the path table in file order. The slice must not be modified.
func (g *Graph) Paths() []Path {
	return g.paths
}

// NumSegments returns the size of the segment table.
func (g *Graph) NumSegments() int {
	return len(g.segments)
}

// NumPaths returns the size of the path table.
func (g *Graph) NumPaths() int {
	return len(g.paths)
}
