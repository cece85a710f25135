package topogen

// topo-file.go reads and writes the line-oriented text form of a topology:
//
//	router <name> <ip1>/<mask1> <ip2>/<mask2> ...
//	host <name> <ip>/24 <gateway-interface-ip>
//	link <name1> <name2>
//
// Declarations may come in any order.  Written files list the hosts, then the routers,
// then the links, each section sorted.

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// String renders the topology in its canonical text form
func (tp *Topo) String() string {
	hosts := make([]string, 0, len(tp.Hosts))
	for _, host := range tp.Hosts {
		hosts = append(hosts, tp.HostString(host))
	}
	routers := make([]string, 0, len(tp.Routers))
	for _, rtr := range tp.Routers {
		routers = append(routers, rtr.String())
	}
	links := make([]string, 0, len(tp.Links))
	for _, lnk := range tp.Links {
		links = append(links, lnk.String())
	}

	sections := make([]string, 0, 3)
	for _, section := range [][]string{hosts, routers, links} {
		if len(section) == 0 {
			continue
		}
		slices.Sort(section)
		sections = append(sections, strings.Join(section, "\n"))
	}
	return strings.Join(sections, "\n")
}

// WriteTo writes the canonical text form, newline terminated
func (tp *Topo) WriteTo(w io.Writer) (int64, error) {
	text := tp.String()
	if len(text) > 0 {
		text += "\n"
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// numberedLine is an input line remembered with its position in the file
type numberedLine struct {
	num  int
	text string
}

func (nl numberedLine) fail(err error) error {
	return &ParseError{Line: nl.num, Text: nl.text, Err: err}
}

// declBuilder accumulates the nodes and links of a topology as declarations are read.
// The text parser and the Desc form both build through it, so the two apply the same checks.
type declBuilder struct {
	routers []*Router
	hosts   []*Host
	links   []*Link
	nodes   map[string]TopoNode

	routerIDs idCounter
	hostIDs   idCounter
}

func createDeclBuilder() *declBuilder {
	db := new(declBuilder)
	db.routers = make([]*Router, 0)
	db.hosts = make([]*Host, 0)
	db.links = make([]*Link, 0)
	db.nodes = make(map[string]TopoNode)
	return db
}

func (db *declBuilder) checkName(name string) error {
	if _, present := db.nodes[name]; present {
		return errors.Wrapf(ErrDuplicateNode, "%s is declared more than once", name)
	}
	return nil
}

// addRouter declares a router with interfaces given in "ip/mask" form
func (db *declBuilder) addRouter(name string, ifcStrs []string) error {
	if len(ifcStrs) == 0 {
		return errors.Wrap(ErrMalformedDecl, "invalid router declaration, no interfaces")
	}
	if err := db.checkName(name); err != nil {
		return err
	}

	rtr := CreateRouter(name, db.routerIDs.Next())
	for _, ifcStr := range ifcStrs {
		ifc, err := ParseIntrfc(ifcStr)
		if err != nil {
			return err
		}
		rtr.AddIntrfc(ifc)
	}

	db.routers = append(db.routers, rtr)
	db.nodes[name] = rtr
	return nil
}

// addHost declares a host.  The gateway ip must be the address of an interface of an
// already declared router; the first router declared with it becomes the gateway.
func (db *declBuilder) addHost(name, ipStr, gwIP string) error {
	ifc, err := ParseIntrfc(ipStr)
	if err != nil {
		return err
	}
	if ifc.Mask != DefaultMask {
		return errors.Wrapf(ErrInvalidAddress, "host address %s must be a /%d", ipStr, DefaultMask)
	}
	if err := CheckIP(gwIP); err != nil {
		return err
	}
	if err := db.checkName(name); err != nil {
		return err
	}

	var gateway *Router
	var gwIfc Intrfc
	for _, rtr := range db.routers {
		idx := slices.IndexFunc(rtr.Interfaces, func(ri Intrfc) bool { return ri.IP == gwIP })
		if idx > -1 {
			gateway = rtr
			gwIfc = rtr.Interfaces[idx]
			break
		}
	}
	if gateway == nil {
		return errors.Wrapf(ErrUnknownGateway, "could not find gateway router with interface %s", gwIP)
	}

	host := CreateHost(name, db.hostIDs.Next(), ifc.IP, gateway.Name)
	gateway.AttachHost(host.Name, gwIfc)

	db.hosts = append(db.hosts, host)
	db.nodes[name] = host
	return nil
}

// addLink declares a link between two already declared nodes.  No addresses are
// assigned, the link's subnet is recovered from the endpoints' existing addresses.
func (db *declBuilder) addLink(name1, name2 string) error {
	for _, name := range []string{name1, name2} {
		if _, present := db.nodes[name]; !present {
			return errors.Wrapf(ErrUnknownNode, "%s is not a known host or router", name)
		}
	}

	lnk, err := joinNodes(db.nodes[name1], db.nodes[name2])
	if err != nil {
		return err
	}
	lnk.Subnet = sharedSubnet(lnk)
	db.links = append(db.links, lnk)
	return nil
}

// sharedSubnet finds the subnet octet common to the link's endpoints, 0 if there is none
func sharedSubnet(lnk *Link) int {
	if lnk.LinksToHost {
		if host, ok := lnk.Node1.(*Host); ok {
			return host.Subnet()
		}
		return lnk.Node2.(*Host).Subnet()
	}

	subnets2 := lnk.Node2.(*Router).Subnets()
	for _, subnet := range lnk.Node1.(*Router).Subnets() {
		if slices.Contains(subnets2, subnet) {
			return subnet
		}
	}
	return 0
}

func (db *declBuilder) topo() *Topo {
	return CreateTopo(db.hosts, db.routers, db.links)
}

// ReadTopo parses the text form of a topology.  Blank lines are skipped.  Every failure
// is reported as a *ParseError naming the line at fault.  Routers and hosts are numbered in
// declaration order, so a router's ID need not match its name or its address octets.
func ReadTopo(r io.Reader) (*Topo, error) {
	var hostLines, routerLines, linkLines []numberedLine

	scanner := bufio.NewScanner(r)
	linenum := 0
	for scanner.Scan() {
		linenum += 1
		text := scanner.Text()
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		nl := numberedLine{num: linenum, text: text}
		switch fields[0] {
		case "host":
			hostLines = append(hostLines, nl)
		case "router":
			routerLines = append(routerLines, nl)
		case "link":
			linkLines = append(linkLines, nl)
		default:
			return nil, nl.fail(errors.Wrapf(ErrMalformedDecl, "unknown declaration %q", fields[0]))
		}
	}
	if err := scanner.Err(); err != nil {
		// the scanner stops on the line it could not read
		nl := numberedLine{num: linenum + 1}
		return nil, nl.fail(errors.Wrap(err, "reading topology"))
	}

	db := createDeclBuilder()

	// routers must all be known before hosts name their gateways
	for _, nl := range routerLines {
		fields := strings.Fields(nl.text)
		if len(fields) < 3 {
			return nil, nl.fail(errors.Wrap(ErrMalformedDecl, "invalid router declaration"))
		}
		if err := db.addRouter(fields[1], fields[2:]); err != nil {
			return nil, nl.fail(err)
		}
	}

	for _, nl := range hostLines {
		fields := strings.Fields(nl.text)
		if len(fields) != 4 {
			return nil, nl.fail(errors.Wrap(ErrMalformedDecl, "invalid host declaration"))
		}
		if err := db.addHost(fields[1], fields[2], fields[3]); err != nil {
			return nil, nl.fail(err)
		}
	}

	for _, nl := range linkLines {
		fields := strings.Fields(nl.text)
		if len(fields) != 3 {
			return nil, nl.fail(errors.Wrap(ErrMalformedDecl, "invalid link declaration"))
		}
		if err := db.addLink(fields[1], fields[2]); err != nil {
			return nil, nl.fail(err)
		}
	}

	tp := db.topo()
	FileLog.Debugf("read %d hosts, %d routers, %d links", tp.NumHosts, tp.NumRouters, tp.NumLinks)
	return tp, nil
}

// ParseTopo parses the text form of a topology held in a string
func ParseTopo(text string) (*Topo, error) {
	return ReadTopo(strings.NewReader(text))
}

// isDescFile indicates whether the file name's extension selects the yaml or json Desc form,
// and if so, whether it is yaml
func isDescFile(filename string) (desc bool, useYAML bool) {
	switch path.Ext(filename) {
	case ".yaml", ".YAML", ".yml":
		return true, true
	case ".json", ".JSON":
		return true, false
	}
	return false, false
}

// Load reads a topology from the named file.  Files with a .yaml, .yml or .json extension
// hold the Desc form, anything else the text form.
func Load(filename string) (*Topo, error) {
	if desc, useYAML := isDescFile(filename); desc {
		td, err := ReadTopoDesc(filename, useYAML, []byte{})
		if err != nil {
			return nil, err
		}
		return td.Build()
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "topology %s cannot be read", filename)
	}
	defer f.Close()

	tp, err := ReadTopo(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "topology %s", filename)
	}
	return tp, nil
}

// Save writes the topology to the named file, in the form selected by its extension as for Load
func Save(tp *Topo, filename string) error {
	if valid, err := CheckOutputFiles([]string{filename}); !valid {
		return err
	}

	if desc, _ := isDescFile(filename); desc {
		td := tp.Transform()
		return td.WriteToFile(filename)
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "topology %s cannot be created", filename)
	}
	if _, err := tp.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing topology %s", filename)
	}
	return f.Close()
}
