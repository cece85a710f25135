package topogen

// layout.go derives what a renderer needs to draw a topology: a position for every
// node, whether the node is a host or a router, and the list of edges.  Nothing
// here changes the topology.

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	routerRadius = 10.0
	hostRadius   = 15.0
)

// Point is a position in the drawing plane
type Point struct {
	X, Y float64
}

// TopoLayout is a read-only drawing description of a topology
type TopoLayout struct {
	// names in the order hosts then routers, as given by the topology
	Names     []string
	Positions map[string]Point

	// value is HostType or RouterType, for styling
	Kinds map[string]string

	// one pair of node names per link, endpoints in link order
	Edges [][2]string
}

// CreateTopoLayout places routers on a circle of radius 10 and hosts on a circle
// of radius 15, host i and router i sharing the same angle
func CreateTopoLayout(tp *Topo) *TopoLayout {
	tl := new(TopoLayout)
	tl.Names = make([]string, 0, tp.NumHosts+tp.NumRouters)
	tl.Positions = make(map[string]Point)
	tl.Kinds = make(map[string]string)
	tl.Edges = make([][2]string, 0, len(tp.Links))

	step := 0.0
	if len(tp.Routers) > 0 {
		step = 2 * math.Pi / float64(len(tp.Routers))
	} else if len(tp.Hosts) > 0 {
		step = 2 * math.Pi / float64(len(tp.Hosts))
	}

	for idx, host := range tp.Hosts {
		arg := float64(idx) * step
		tl.Names = append(tl.Names, host.Name)
		tl.Positions[host.Name] = Point{X: hostRadius * math.Cos(arg), Y: hostRadius * math.Sin(arg)}
		tl.Kinds[host.Name] = HostType
	}
	for idx, rtr := range tp.Routers {
		arg := float64(idx) * step
		tl.Names = append(tl.Names, rtr.Name)
		tl.Positions[rtr.Name] = Point{X: routerRadius * math.Cos(arg), Y: routerRadius * math.Sin(arg)}
		tl.Kinds[rtr.Name] = RouterType
	}

	for _, lnk := range tp.Links {
		tl.Edges = append(tl.Edges, [2]string{lnk.Node1.DevName(), lnk.Node2.DevName()})
	}
	return tl
}

// dotNode carries a topology node into the gonum DOT encoder
type dotNode struct {
	id   int64
	name string
	kind string
	pos  Point
}

func (dn dotNode) ID() int64 { return dn.id }
func (dn dotNode) DOTID() string { return dn.name }

func (dn dotNode) Attributes() []encoding.Attribute {
	colour := "blue"
	if dn.kind == HostType {
		colour = "green"
	}
	return []encoding.Attribute{
		{Key: "shape", Value: "circle"},
		{Key: "style", Value: "filled"},
		{Key: "fillcolor", Value: colour},
		{Key: "pos", Value: fmt.Sprintf("%.3f,%.3f!", dn.pos.X, dn.pos.Y)},
	}
}

// MarshalDOT renders the layout as an undirected graph in the DOT language, with node
// positions pinned, ready for any DOT renderer
func (tl *TopoLayout) MarshalDOT(name string) ([]byte, error) {
	g := simple.NewUndirectedGraph()
	byName := make(map[string]dotNode)
	for idx, nodeName := range tl.Names {
		dn := dotNode{id: int64(idx), name: nodeName, kind: tl.Kinds[nodeName], pos: tl.Positions[nodeName]}
		byName[nodeName] = dn
		g.AddNode(dn)
	}
	for _, edge := range tl.Edges {
		from, ok1 := byName[edge[0]]
		to, ok2 := byName[edge[1]]
		if !ok1 || !ok2 || from.id == to.id {
			continue
		}
		g.SetEdge(simple.Edge{F: from, T: to})
	}
	return dot.Marshal(g, name, "", "\t")
}
