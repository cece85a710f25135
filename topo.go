package topogen

// topo.go holds the structs and methods of the topology model: routers, hosts,
// the links between them, and the Topo that owns them all.

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const (
	RouterType = "Router"
	HostType   = "Host"
)

// The TopoNode interface is satisfied only by *Router and *Host.  Code that needs
// to treat the two differently switches on DevType.
type TopoNode interface {
	DevName() string // returns the .Name field of the struct
	DevID() int      // returns the per-kind identifier
	DevType() string // returns RouterType or HostType
	topoNode()
}

// Router owns one interface per link it participates in, and remembers which of those
// interfaces serves as gateway for each host attached to it
type Router struct {
	Name string
	ID   int

	Interfaces []Intrfc

	// key is the name of an attached host
	Hosts map[string]Intrfc
}

// CreateRouter is a constructor
func CreateRouter(name string, id int) *Router {
	rtr := new(Router)
	rtr.Name = name
	rtr.ID = id
	rtr.Interfaces = make([]Intrfc, 0)
	rtr.Hosts = make(map[string]Intrfc)
	return rtr
}

func (rtr *Router) DevName() string { return rtr.Name }
func (rtr *Router) DevID() int { return rtr.ID }
func (rtr *Router) DevType() string { return RouterType }
func (rtr *Router) topoNode() {}

// AddIntrfc appends an interface to the router
func (rtr *Router) AddIntrfc(ifc Intrfc) {
	rtr.Interfaces = append(rtr.Interfaces, ifc)
}

// AttachHost records ifc as the gateway interface of the named host
func (rtr *Router) AttachHost(hostName string, ifc Intrfc) {
	rtr.Hosts[hostName] = ifc
}

// Subnets lists the subnet octets of the router's interfaces, in interface order
func (rtr *Router) Subnets() []int {
	subnets := make([]int, 0, len(rtr.Interfaces))
	for _, ifc := range rtr.Interfaces {
		subnets = append(subnets, ifc.Subnet())
	}
	return subnets
}

// String gives the router's declaration line
func (rtr *Router) String() string {
	ifcs := make([]string, len(rtr.Interfaces))
	for idx, ifc := range rtr.Interfaces {
		ifcs[idx] = ifc.String()
	}
	return strings.TrimRight(fmt.Sprintf("router %s %s", rtr.Name, strings.Join(ifcs, " ")), " ")
}

// Host has a single address, implicitly /24, and refers to its gateway router by name
type Host struct {
	Name    string
	ID      int
	IP      string
	Gateway string
}

// CreateHost is a constructor
func CreateHost(name string, id int, ip string, gateway string) *Host {
	return &Host{Name: name, ID: id, IP: ip, Gateway: gateway}
}

func (host *Host) DevName() string { return host.Name }
func (host *Host) DevID() int { return host.ID }
func (host *Host) DevType() string { return HostType }
func (host *Host) topoNode() {}

// Subnet returns the third octet of the host's address
func (host *Host) Subnet() int {
	return subnetOf(host.IP)
}

// LinkKey is the order-independent identity of a link
type LinkKey struct {
	A, B string
}

// MakeLinkKey orders the two names so that (x,y) and (y,x) give the same key
func MakeLinkKey(name1, name2 string) LinkKey {
	if name2 < name1 {
		name1, name2 = name2, name1
	}
	return LinkKey{A: name1, B: name2}
}

// Link is an edge between two nodes.  The endpoints are held in the order given
// at creation; equality is through Key.
type Link struct {
	Node1 TopoNode
	Node2 TopoNode

	// true iff exactly one endpoint is a host
	LinksToHost bool

	// subnet octet the link's addresses share, 0 if not known
	Subnet int
}

// joinNodes builds the link structure without touching any addresses.
// Two host endpoints are refused.
func joinNodes(node1, node2 TopoNode) (*Link, error) {
	if node1.DevType() == HostType && node2.DevType() == HostType {
		return nil, errors.Wrapf(ErrInvalidLink, "cannot link two hosts %s and %s",
			node1.DevName(), node2.DevName())
	}
	lnk := new(Link)
	lnk.Node1 = node1
	lnk.Node2 = node2
	lnk.LinksToHost = node1.DevType() == HostType || node2.DevType() == HostType
	return lnk, nil
}

// CreateLink is a constructor.  The allocator reserves the link's subnet and, for a link between
// two routers, gives each router a new interface on it.
func CreateLink(node1, node2 TopoNode, sa *SubnetAllocator) (*Link, error) {
	lnk, err := joinNodes(node1, node2)
	if err != nil {
		return nil, err
	}
	if err := sa.ReserveFor(lnk); err != nil {
		return nil, err
	}
	return lnk, nil
}

// Key returns the order-independent identity of the link
func (lnk *Link) Key() LinkKey {
	return MakeLinkKey(lnk.Node1.DevName(), lnk.Node2.DevName())
}

// Contains indicates whether the named node is an endpoint of the link
func (lnk *Link) Contains(name string) bool {
	return lnk.Node1.DevName() == name || lnk.Node2.DevName() == name
}

// Peer returns the endpoint opposite the named one, nil if the name is not an endpoint
func (lnk *Link) Peer(name string) TopoNode {
	switch name {
	case lnk.Node1.DevName():
		return lnk.Node2
	case lnk.Node2.DevName():
		return lnk.Node1
	}
	return nil
}

// String gives the link's declaration line
func (lnk *Link) String() string {
	return fmt.Sprintf("link %s %s", lnk.Node1.DevName(), lnk.Node2.DevName())
}

// Topo owns all the hosts, routers and links of one topology
type Topo struct {
	Hosts      []*Host
	NumHosts   int
	Routers    []*Router
	NumRouters int
	Links      []*Link
	NumLinks   int

	hostByName map[string]*Host
	rtrByName  map[string]*Router
}

// CreateTopo is a constructor
func CreateTopo(hosts []*Host, routers []*Router, links []*Link) *Topo {
	tp := new(Topo)
	tp.Hosts = slices.Clone(hosts)
	tp.Routers = slices.Clone(routers)
	tp.Links = slices.Clone(links)
	tp.hostByName = make(map[string]*Host)
	tp.rtrByName = make(map[string]*Router)

	for _, host := range tp.Hosts {
		tp.hostByName[host.Name] = host
	}
	for _, rtr := range tp.Routers {
		tp.rtrByName[rtr.Name] = rtr
	}
	tp.recount()
	return tp
}

func (tp *Topo) recount() {
	tp.NumHosts = len(tp.Hosts)
	tp.NumRouters = len(tp.Routers)
	tp.NumLinks = len(tp.Links)
}

// addLink is the only way a finished topology grows
func (tp *Topo) addLink(lnk *Link) {
	tp.Links = append(tp.Links, lnk)
	tp.recount()
}

// Router returns the router with the given name, if any
func (tp *Topo) Router(name string) (*Router, bool) {
	rtr, present := tp.rtrByName[name]
	return rtr, present
}

// Host returns the host with the given name, if any
func (tp *Topo) Host(name string) (*Host, bool) {
	host, present := tp.hostByName[name]
	return host, present
}

// Node looks the name up among routers and hosts both
func (tp *Topo) Node(name string) (TopoNode, bool) {
	if rtr, present := tp.rtrByName[name]; present {
		return rtr, true
	}
	if host, present := tp.hostByName[name]; present {
		return host, true
	}
	return nil, false
}

// GatewayIntrfc resolves the interface of the host's gateway router that serves the host
func (tp *Topo) GatewayIntrfc(host *Host) (Intrfc, bool) {
	rtr, present := tp.rtrByName[host.Gateway]
	if !present {
		return Intrfc{}, false
	}
	ifc, present := rtr.Hosts[host.Name]
	return ifc, present
}

// HostString gives the host's declaration line
func (tp *Topo) HostString(host *Host) string {
	gwIP := ""
	if ifc, present := tp.GatewayIntrfc(host); present {
		gwIP = ifc.IP
	}
	return fmt.Sprintf("host %s %s/%d %s", host.Name, host.IP, DefaultMask, gwIP)
}

// RouterLinks returns the links that join two routers
func (tp *Topo) RouterLinks() []*Link {
	rtn := make([]*Link, 0, len(tp.Links))
	for _, lnk := range tp.Links {
		if !lnk.LinksToHost {
			rtn = append(rtn, lnk)
		}
	}
	return rtn
}

// CheckTopo reports whether the topology is well formed: every router takes part
// in at least two links, and no link joins two hosts.  When it is not, the second
// return value describes every problem found.
func CheckTopo(tp *Topo) (bool, string) {
	errs := make([]error, 0)
	for _, rtr := range tp.Routers {
		if len(rtr.Interfaces) < 2 {
			errs = append(errs, fmt.Errorf("router %s has %d interfaces", rtr.Name, len(rtr.Interfaces)))
		}
	}
	for _, lnk := range tp.Links {
		if lnk.Node1.DevType() == HostType && lnk.Node2.DevType() == HostType {
			errs = append(errs, fmt.Errorf("link %s %s joins two hosts", lnk.Node1.DevName(), lnk.Node2.DevName()))
		}
	}

	err := ReportErrs(errs)
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}
