package topogen

// subnet.go holds the pool of subnet octets handed out to links.  Every link
// gets a subnet of its own, 10.0.<subnet>.0/24, and no two links drawn against one
// SubnetAllocator share a subnet.

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const (
	MinSubnet = 1
	MaxSubnet = 254
)

// SubnetAllocator remembers which subnet octets are taken.  One allocator is
// meant to be shared by every link created during a build session; a topology built
// later against the same allocator continues to draw from the same pool.
type SubnetAllocator struct {
	taken mapset.Set[int]
	rng   Source
}

// CreateSubnetAllocator is a constructor.  rng supplies the random pick of fresh subnets.
func CreateSubnetAllocator(rng Source) *SubnetAllocator {
	sa := new(SubnetAllocator)
	sa.taken = mapset.NewThreadUnsafeSet[int]()
	sa.rng = rng
	return sa
}

// ReserveFor reserves the subnet used by a newly created link.
//
// A link with a host endpoint takes the subnet already fixed by the host's address.
// A link between two routers draws a fresh subnet uniformly from the free ones and
// gives each router an interface 10.0.<subnet>.<router ID>/24.
func (sa *SubnetAllocator) ReserveFor(lnk *Link) error {
	if lnk.LinksToHost {
		host := lnk.Node1
		if host.DevType() != HostType {
			host = lnk.Node2
		}
		subnet := host.(*Host).Subnet()
		sa.taken.Add(subnet)
		lnk.Subnet = subnet
		return nil
	}

	rtr1 := lnk.Node1.(*Router)
	rtr2 := lnk.Node2.(*Router)

	// subnets the routers already use are off the table, whether or not they were drawn here
	for _, subnet := range rtr1.Subnets() {
		sa.taken.Add(subnet)
	}
	for _, subnet := range rtr2.Subnets() {
		sa.taken.Add(subnet)
	}

	free := sa.Free()
	if len(free) == 0 {
		return errors.Wrapf(ErrSubnetsExhausted, "cannot link %s and %s", rtr1.Name, rtr2.Name)
	}

	subnet := free[sa.rng.RandInt(0, len(free)-1)]
	sa.taken.Add(subnet)
	lnk.Subnet = subnet

	for _, rtr := range []*Router{rtr1, rtr2} {
		rtr.AddIntrfc(Intrfc{IP: linkIP(subnet, rtr.ID), Mask: DefaultMask})
	}

	SubnetLog.Debugf("subnet %d assigned to link %s %s", subnet, rtr1.Name, rtr2.Name)
	return nil
}

// Free lists, in ascending order, the subnet octets not yet taken
func (sa *SubnetAllocator) Free() []int {
	free := make([]int, 0, MaxSubnet)
	for subnet := MinSubnet; subnet <= MaxSubnet; subnet++ {
		if !sa.taken.Contains(subnet) {
			free = append(free, subnet)
		}
	}
	return free
}

// Taken returns the subnet octets already reserved, sorted
func (sa *SubnetAllocator) Taken() []int {
	taken := sa.taken.ToSlice()
	slices.Sort(taken)
	return taken
}

// IsTaken indicates whether the subnet octet has been reserved
func (sa *SubnetAllocator) IsTaken(subnet int) bool {
	return sa.taken.Contains(subnet)
}

// MarkTopo reserves every subnet the topology's hosts and router interfaces already use.
// Marking the same topology twice changes nothing.
func (sa *SubnetAllocator) MarkTopo(tp *Topo) {
	for _, host := range tp.Hosts {
		sa.taken.Add(host.Subnet())
	}
	for _, rtr := range tp.Routers {
		for _, subnet := range rtr.Subnets() {
			sa.taken.Add(subnet)
		}
	}
}

// Reset empties the pool
func (sa *SubnetAllocator) Reset() {
	sa.taken.Clear()
}
