package topogen

// gen-topo.go builds random topologies: a set of routers, hosts attached to randomly
// chosen gateway routers, and router-router links included independently with
// probability given by the density.

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

const (
	DefaultDensity = 0.4

	// generated router IDs are the last octet of router addresses, and must stay
	// clear of the host addresses 10.0.i.(100+i)
	MaxRouters = 99

	// host i is given address 10.0.i.(100+i)
	MaxHosts = 154
)

// idCounter hands out dense 1-based identifiers for one kind of node
type idCounter struct {
	last int
}

// Next returns the next identifier
func (ic *idCounter) Next() int {
	ic.last += 1
	return ic.last
}

// Reset starts the sequence over at 1
func (ic *idCounter) Reset() {
	ic.last = 0
}

// TopoGenerator builds random topologies, drawing subnets from one allocator and
// random choices from one source
type TopoGenerator struct {
	sa  *SubnetAllocator
	rng Source

	routerIDs idCounter
	hostIDs   idCounter
}

// CreateTopoGenerator is a constructor
func CreateTopoGenerator(sa *SubnetAllocator, rng Source) *TopoGenerator {
	tg := new(TopoGenerator)
	tg.sa = sa
	tg.rng = rng
	return tg
}

// GenTopo generates a topology.  A nil count is drawn at random, hosts from [2,6]
// and routers from [4,8].
func (tg *TopoGenerator) GenTopo(nHosts, nRouters *int, density float64) (*Topo, error) {
	cfg := DefaultGenCfg()
	cfg.Hosts = nHosts
	cfg.Routers = nRouters
	cfg.Density = density
	return tg.Generate(cfg)
}

// Generate builds the topology described by cfg.  The ID sequences of routers and hosts
// start over at 1 for every topology; subnets continue to be drawn from the generator's
// allocator.
func (tg *TopoGenerator) Generate(cfg *GenCfg) (*Topo, error) {
	if !(cfg.Density > 0.0 && cfg.Density <= 1.0) {
		return nil, errors.Wrapf(ErrInvalidDensity, "density %v", cfg.Density)
	}

	var nHosts, nRouters int
	if cfg.Hosts != nil {
		nHosts = *cfg.Hosts
	} else {
		nHosts = tg.rng.RandInt(2, 6)
	}
	if cfg.Routers != nil {
		nRouters = *cfg.Routers
	} else {
		nRouters = tg.rng.RandInt(4, 8)
	}

	if nRouters < 1 || nRouters > MaxRouters {
		return nil, errors.Wrapf(ErrInvalidCount, "%d routers, must be in [1,%d]", nRouters, MaxRouters)
	}
	if nHosts < 0 || nHosts > MaxHosts {
		return nil, errors.Wrapf(ErrInvalidCount, "%d hosts, must be in [0,%d]", nHosts, MaxHosts)
	}

	tg.routerIDs.Reset()
	tg.hostIDs.Reset()

	routers := make([]*Router, nRouters)
	for idx := 0; idx < nRouters; idx++ {
		routers[idx] = CreateRouter(fmt.Sprintf("r%d", idx+1), tg.routerIDs.Next())
	}

	// gateways are sampled with replacement, a router may serve any number of hosts
	hostRouters := make([]*Router, nHosts)
	for idx := range hostRouters {
		hostRouters[idx] = routers[tg.rng.RandInt(0, nRouters-1)]
	}

	hosts := make([]*Host, 0, nHosts)
	links := make([]*Link, 0)
	linked := mapset.NewThreadUnsafeSet[LinkKey]()

	addLink := func(node1, node2 TopoNode) error {
		if linked.Contains(MakeLinkKey(node1.DevName(), node2.DevName())) {
			return nil
		}
		lnk, err := CreateLink(node1, node2, tg.sa)
		if err != nil {
			return err
		}
		linked.Add(lnk.Key())
		links = append(links, lnk)
		return nil
	}

	for idx, rtr := range hostRouters {
		i := idx + 1
		ifc := Intrfc{IP: linkIP(i, rtr.ID), Mask: DefaultMask}
		rtr.AddIntrfc(ifc)

		host := CreateHost(fmt.Sprintf("h%d", i), tg.hostIDs.Next(), linkIP(i, 100+i), rtr.Name)
		rtr.AttachHost(host.Name, ifc)
		hosts = append(hosts, host)

		if err := addLink(host, rtr); err != nil {
			return nil, err
		}
	}

	for i := 0; i < nRouters; i++ {
		for j := i + 1; j < nRouters; j++ {
			if tg.rng.RandU01() <= cfg.Density {
				if err := addLink(routers[i], routers[j]); err != nil {
					return nil, err
				}
			}
		}
	}

	tp := CreateTopo(hosts, routers, links)
	GenLog.Infof("generated %d hosts, %d routers, %d links", tp.NumHosts, tp.NumRouters, tp.NumLinks)

	if cfg.Repair {
		if _, err := tp.EnsureConnected(tg.sa, tg.rng); err != nil {
			return nil, err
		}
	}

	return tp, nil
}
