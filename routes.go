package topogen

// routes.go finds fewest-hop routes through a topology.
//
// Routes are computed over the router-only graph that connect.go builds, each edge
// weighing 1, so a shortest path minimizes the number of router hops.  A host is not a
// transit device: a route from or to a host enters or leaves through its gateway.
//
// The Dijkstra algorithm we call computes a tree of shortest paths from one router, so
// trees are cached by root.  A route from src to dst is read from the tree rooted in src
// if there is one, otherwise from the tree rooted in dst and reversed.

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// RouteFinder answers route queries against a topology as it was when the finder was created
type RouteFinder struct {
	tp        *Topo
	connGraph *simple.UndirectedGraph
	rtrByID   map[int64]*Router

	// key is the ID of the root router
	cachedSP map[int64]path.Shortest
}

// CreateRouteFinder is a constructor
func CreateRouteFinder(tp *Topo) *RouteFinder {
	rf := new(RouteFinder)
	rf.tp = tp
	rf.connGraph = buildRouterGraph(tp)
	rf.rtrByID = make(map[int64]*Router)
	for _, rtr := range tp.Routers {
		rf.rtrByID[int64(rtr.ID)] = rtr
	}
	rf.cachedSP = make(map[int64]path.Shortest)
	return rf
}

// getSPTree returns the shortest path tree rooted in the given router, computing and
// caching it if need be
func (rf *RouteFinder) getSPTree(rtr *Router) path.Shortest {
	id := int64(rtr.ID)
	spTree, present := rf.cachedSP[id]
	if present {
		return spTree
	}
	spTree = path.DijkstraFrom(rf.connGraph.Node(id), rf.connGraph)
	rf.cachedSP[id] = spTree
	return spTree
}

// attachment resolves a named node to the router through which it is reached
func (rf *RouteFinder) attachment(name string) (*Router, error) {
	node, present := rf.tp.Node(name)
	if !present {
		return nil, errors.Wrapf(ErrUnknownNode, "no route for %s", name)
	}
	if node.DevType() == RouterType {
		return node.(*Router), nil
	}

	host := node.(*Host)
	rtr, present := rf.tp.Router(host.Gateway)
	if !present {
		return nil, errors.Wrapf(ErrUnknownGateway, "host %s has no gateway router %s", host.Name, host.Gateway)
	}
	return rtr, nil
}

// routerSeq gives the routers on a fewest-hop path between two routers, both included
func (rf *RouteFinder) routerSeq(src, dst *Router) ([]*Router, bool) {
	if src == dst {
		return []*Router{src}, true
	}

	var nodeSeq []graph.Node
	reversed := false

	if spTree, present := rf.cachedSP[int64(dst.ID)]; present {
		nodeSeq, _ = spTree.To(int64(src.ID))
		reversed = true
	} else {
		nodeSeq, _ = rf.getSPTree(src).To(int64(dst.ID))
	}
	if len(nodeSeq) == 0 {
		return nil, false
	}

	seq := make([]*Router, len(nodeSeq))
	for idx, n := range nodeSeq {
		seq[idx] = rf.rtrByID[n.ID()]
	}
	if reversed {
		slices.Reverse(seq)
	}
	return seq, true
}

// Route returns the names of the devices on a fewest-hop route from src to dst, the
// endpoints included.  ErrNoRoute is returned when the two lie in different router components.
func (rf *RouteFinder) Route(src, dst string) ([]string, error) {
	if src == dst {
		if _, present := rf.tp.Node(src); !present {
			return nil, errors.Wrapf(ErrUnknownNode, "no route for %s", src)
		}
		return []string{src}, nil
	}

	srcRtr, err := rf.attachment(src)
	if err != nil {
		return nil, err
	}
	dstRtr, err := rf.attachment(dst)
	if err != nil {
		return nil, err
	}

	seq, found := rf.routerSeq(srcRtr, dstRtr)
	if !found {
		return nil, errors.Wrapf(ErrNoRoute, "from %s to %s", src, dst)
	}

	route := make([]string, 0, len(seq)+2)
	if src != srcRtr.Name {
		route = append(route, src)
	}
	for _, rtr := range seq {
		route = append(route, rtr.Name)
	}
	if dst != dstRtr.Name {
		route = append(route, dst)
	}
	return route, nil
}

// Hops returns the number of links a fewest-hop route from src to dst crosses
func (rf *RouteFinder) Hops(src, dst string) (int, error) {
	route, err := rf.Route(src, dst)
	if err != nil {
		return 0, err
	}
	return len(route) - 1, nil
}

// ShowRoute lists the device names of a route, comma separated
func ShowRoute(route []string) string {
	return strings.Join(route, ",")
}
