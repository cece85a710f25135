package topogen

// connect.go finds the connected components of the router-only subgraph of a topology
// and stitches them together.
//
// The general approach is to convert the topology into the data structures used by the
// gonum graph package: one graph node per router, identified by the router's ID, and one
// undirected edge per router-router link.  Links to hosts are left out, a host never
// carries traffic between routers.  A breadth-first walk from each router not yet seen
// then gives the components one at a time.

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// buildRouterGraph returns the gonum representation of the routers and the
// links that join them
func buildRouterGraph(tp *Topo) *simple.UndirectedGraph {
	connGraph := simple.NewUndirectedGraph()
	for _, rtr := range tp.Routers {
		if connGraph.Node(int64(rtr.ID)) == nil {
			connGraph.AddNode(simple.Node(rtr.ID))
		}
	}

	for _, lnk := range tp.RouterLinks() {
		id1, id2 := int64(lnk.Node1.DevID()), int64(lnk.Node2.DevID())

		// gonum refuses self edges, and a self link connects nothing anyway
		if id1 == id2 {
			continue
		}
		connGraph.SetEdge(simple.Edge{F: simple.Node(id1), T: simple.Node(id2)})
	}
	return connGraph
}

// RouterComponents returns the connected components of the router-only subgraph.
// Components are listed in the order of their earliest created router, and the
// routers of a component are sorted by ID.  A router with no router-router links
// is a component of its own.
func RouterComponents(tp *Topo) [][]*Router {
	connGraph := buildRouterGraph(tp)

	rtrByID := make(map[int64]*Router)
	for _, rtr := range tp.Routers {
		rtrByID[int64(rtr.ID)] = rtr
	}

	// collect sees each router reached exactly once, the start included
	var component []*Router
	collect := func(n graph.Node, _ int) bool {
		component = append(component, rtrByID[n.ID()])
		return false
	}
	var bfs traverse.BreadthFirst

	components := make([][]*Router, 0)
	for _, rtr := range tp.Routers {
		start := connGraph.Node(int64(rtr.ID))
		if bfs.Visited(start) {
			continue
		}
		component = make([]*Router, 0)
		bfs.Walk(connGraph, start, collect)

		slices.SortFunc(component, func(a, b *Router) int { return a.ID - b.ID })
		components = append(components, component)
	}
	return components
}

// IsConnected indicates whether every router can reach every other through router-router links
func IsConnected(tp *Topo) bool {
	return len(RouterComponents(tp)) < 2
}

// EnsureConnected makes the router-only subgraph a single component.  For components
// c0, c1, ..., ck-1 it adds one link between a random member of ci and a random member
// of ci+1, drawing each new link's subnet from sa.  Every subnet the topology already
// uses is reserved in sa first.  The added links are returned; none are added if the
// routers are already connected.
func (tp *Topo) EnsureConnected(sa *SubnetAllocator, rng Source) ([]*Link, error) {
	sa.MarkTopo(tp)
	components := RouterComponents(tp)
	added := make([]*Link, 0)

	if len(components) < 2 {
		return added, nil
	}

	ConnLog.Infof("joining %d router components", len(components))

	for idx := 1; idx < len(components); idx++ {
		comp1, comp2 := components[idx-1], components[idx]
		rtr1 := comp1[rng.RandInt(0, len(comp1)-1)]
		rtr2 := comp2[rng.RandInt(0, len(comp2)-1)]

		lnk, err := CreateLink(rtr1, rtr2, sa)
		if err != nil {
			return added, errors.Wrapf(err, "joining components of %s and %s", rtr1.Name, rtr2.Name)
		}
		tp.addLink(lnk)
		added = append(added, lnk)
		ConnLog.Debugf("added %s", lnk)
	}

	return added, nil
}
