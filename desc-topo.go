package topogen

// file desc-topo.go holds serializable descriptions of topologies and of the
// parameters that drive their generation, written to and read from json or yaml.
//
// A Topo holds pointers: links point at their endpoints.  To serialize it we
// transform it into a TopoDesc, in which every reference to a node is replaced by
// the node's name.  Build goes the other way and applies the same checks the
// text parser does.

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RouterDesc is a serializable description of a router
type RouterDesc struct {
	Name string `json:"name" yaml:"name"`

	// interfaces in "ip/mask" form, in the order the router acquired them
	Interfaces []string `json:"interfaces" yaml:"interfaces"`
}

// HostDesc is a serializable description of a host
type HostDesc struct {
	Name string `json:"name" yaml:"name"`

	// address in "ip/24" form
	IP string `json:"ip" yaml:"ip"`

	// address of the gateway router's interface serving the host
	Gateway string `json:"gateway" yaml:"gateway"`
}

// LinkDesc is a serializable description of a link, by the names of its endpoints
type LinkDesc struct {
	Node1 string `json:"node1" yaml:"node1"`
	Node2 string `json:"node2" yaml:"node2"`
}

// TopoDesc is the serializable form of a Topo
type TopoDesc struct {
	Name    string       `json:"name" yaml:"name"`
	Hosts   []HostDesc   `json:"hosts" yaml:"hosts"`
	Routers []RouterDesc `json:"routers" yaml:"routers"`
	Links   []LinkDesc   `json:"links" yaml:"links"`
}

// Transform converts a Topo and returns a TopoDesc, for serialization
func (tp *Topo) Transform() TopoDesc {
	td := TopoDesc{}
	td.Hosts = make([]HostDesc, 0, len(tp.Hosts))
	td.Routers = make([]RouterDesc, 0, len(tp.Routers))
	td.Links = make([]LinkDesc, 0, len(tp.Links))

	for _, host := range tp.Hosts {
		hd := HostDesc{Name: host.Name, IP: fmt.Sprintf("%s/%d", host.IP, DefaultMask)}
		if ifc, present := tp.GatewayIntrfc(host); present {
			hd.Gateway = ifc.IP
		}
		td.Hosts = append(td.Hosts, hd)
	}

	for _, rtr := range tp.Routers {
		rd := RouterDesc{Name: rtr.Name, Interfaces: make([]string, len(rtr.Interfaces))}
		for idx, ifc := range rtr.Interfaces {
			rd.Interfaces[idx] = ifc.String()
		}
		td.Routers = append(td.Routers, rd)
	}

	for _, lnk := range tp.Links {
		td.Links = append(td.Links, LinkDesc{Node1: lnk.Node1.DevName(), Node2: lnk.Node2.DevName()})
	}

	return td
}

// Build creates the Topo the TopoDesc describes.  Routers are created first,
// then hosts, then links, and each is checked as the text parser checks it.
func (td *TopoDesc) Build() (*Topo, error) {
	db := createDeclBuilder()

	for _, rd := range td.Routers {
		if err := db.addRouter(rd.Name, rd.Interfaces); err != nil {
			return nil, errors.WithMessagef(err, "router %s", rd.Name)
		}
	}
	for _, hd := range td.Hosts {
		if err := db.addHost(hd.Name, hd.IP, hd.Gateway); err != nil {
			return nil, errors.WithMessagef(err, "host %s", hd.Name)
		}
	}
	for _, ld := range td.Links {
		if err := db.addLink(ld.Node1, ld.Node2); err != nil {
			return nil, errors.WithMessagef(err, "link %s %s", ld.Node1, ld.Node2)
		}
	}

	return db.topo(), nil
}

// marshalByExt serializes v to json or to yaml, selected by the extension of filename
func marshalByExt(v any, filename string) ([]byte, error) {
	switch path.Ext(filename) {
	case ".yaml", ".YAML", ".yml":
		return yaml.Marshal(v)
	case ".json", ".JSON":
		return json.MarshalIndent(v, "", "\t")
	}
	return nil, fmt.Errorf("%s: extension selects neither json nor yaml", filename)
}

// readDict returns dict if it is not empty, otherwise the contents of the named file
func readDict(filename string, dict []byte) ([]byte, error) {
	if len(dict) > 0 {
		return dict, nil
	}
	fileInfo, err := os.Stat(filename)
	if os.IsNotExist(err) || (err == nil && fileInfo.IsDir()) {
		return nil, fmt.Errorf("%s does not exist or cannot be read", filename)
	}
	return os.ReadFile(filename)
}

// WriteToFile serializes the TopoDesc and writes it to the file whose name is given.
// Extension of the file name selects whether serialization is to json or to yaml format.
func (td *TopoDesc) WriteToFile(filename string) error {
	bytes, err := marshalByExt(*td, filename)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0o644)
}

// ReadTopoDesc deserializes a slice of bytes into a TopoDesc.  If the input arg of bytes
// is empty, the file whose name is given as an argument is read.  Error returned if
// any part of the process generates the error.
func ReadTopoDesc(filename string, useYAML bool, dict []byte) (*TopoDesc, error) {
	dict, err := readDict(filename, dict)
	if err != nil {
		return nil, errors.Wrap(err, "topology")
	}

	example := TopoDesc{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "topology %s", filename)
	}

	return &example, nil
}

// GenCfg holds the parameters of a random topology.  A nil count is drawn at random
// when the topology is generated.
type GenCfg struct {
	Name    string  `json:"name" yaml:"name"`
	Hosts   *int    `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Routers *int    `json:"routers,omitempty" yaml:"routers,omitempty"`
	Density float64 `json:"density" yaml:"density"`

	// fixes the random sequence, so that generation is reproducible
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// join the router components once generation is done
	Repair bool `json:"repair" yaml:"repair"`
}

// DefaultGenCfg is a constructor giving random counts and the default density
func DefaultGenCfg() *GenCfg {
	return &GenCfg{Name: "topo", Density: DefaultDensity}
}

// Source returns the random source the configuration asks for: seeded if a seed is
// given, otherwise an rngstream stream named after the configuration
func (cfg *GenCfg) Source() Source {
	if cfg.Seed != nil {
		return NewSeededSource(*cfg.Seed)
	}
	return NewStreamSource(cfg.Name)
}

// WriteToFile stores the GenCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (cfg *GenCfg) WriteToFile(filename string) error {
	bytes, err := marshalByExt(*cfg, filename)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0o644)
}

// ReadGenCfg deserializes a byte slice holding a representation of a GenCfg struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  Attributes the representation leaves out keep their DefaultGenCfg values.
func ReadGenCfg(filename string, useYAML bool, dict []byte) (*GenCfg, error) {
	dict, err := readDict(filename, dict)
	if err != nil {
		return nil, errors.Wrap(err, "generator configuration")
	}

	cfg := DefaultGenCfg()
	if useYAML {
		err = yaml.Unmarshal(dict, cfg)
	} else {
		err = json.Unmarshal(dict, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "generator configuration %s", filename)
	}

	return cfg, nil
}

// CheckReadableFiles probes the file system to ensure that every
// one of the argument filenames exists and is readable
func CheckReadableFiles(names []string) (bool, error) {
	return CheckFiles(names, true)
}

// CheckOutputFiles probes the file system to ensure that every
// argument filename can be written.
func CheckOutputFiles(names []string) (bool, error) {
	return CheckFiles(names, false)
}

// CheckFiles probes the file system for permitted access to all the
// argument filenames, optionally checking also for the existence
// of those files for the purposes of reading them.
func CheckFiles(names []string, checkExistence bool) (bool, error) {
	errs := make([]error, 0)

	for _, name := range names {
		if len(name) == 0 {
			continue
		}

		// split off the directory portion of the path
		directory, _ := filepath.Split(name)
		if len(directory) == 0 {
			directory = "."
		}
		if _, err := os.Stat(directory); err != nil {
			errs = append(errs, err)
		}

		if checkExistence {
			if _, err := os.Stat(name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if rtnerr := ReportErrs(errs); rtnerr != nil {
		return false, rtnerr
	}
	return true, nil
}
