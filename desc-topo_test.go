package topogen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGenCfgDefaults(t *testing.T) {
	dict := []byte("name: campus\nrouters: 7\nseed: 42\n")
	cfg, err := ReadGenCfg("campus.yaml", true, dict)
	require.NoError(t, err)

	assert.Equal(t, "campus", cfg.Name)
	require.NotNil(t, cfg.Routers)
	assert.Equal(t, 7, *cfg.Routers)
	assert.Nil(t, cfg.Hosts, "an absent count stays random")
	assert.Equal(t, DefaultDensity, cfg.Density)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
	assert.False(t, cfg.Repair)
}

func TestGenCfgFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	seed := uint64(9)

	cfg := DefaultGenCfg()
	cfg.Name = "lab"
	cfg.Hosts = intPtr(3)
	cfg.Density = 0.75
	cfg.Seed = &seed
	cfg.Repair = true

	for _, filename := range []string{"lab.json", "lab.yaml"} {
		full := filepath.Join(dir, filename)
		require.NoError(t, cfg.WriteToFile(full))

		desc, useYAML := isDescFile(full)
		require.True(t, desc)
		read, err := ReadGenCfg(full, useYAML, []byte{})
		require.NoError(t, err)
		assert.Equal(t, cfg, read, filename)
	}
}

func TestWriteToFileUnknownExtension(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lab.txt")
	assert.Error(t, DefaultGenCfg().WriteToFile(filename))

	td := TopoDesc{Name: "empty"}
	assert.Error(t, td.WriteToFile(filename))

	_, err := os.Stat(filename)
	assert.True(t, os.IsNotExist(err), "nothing is written")
}

func TestReadGenCfgErrors(t *testing.T) {
	_, err := ReadGenCfg(filepath.Join(t.TempDir(), "absent.yaml"), true, []byte{})
	assert.Error(t, err)

	_, err = ReadGenCfg("bad.json", false, []byte("{\"density\": \"dense\"}"))
	assert.Error(t, err)
}

func TestGenCfgSource(t *testing.T) {
	seed := uint64(11)
	cfg := DefaultGenCfg()
	cfg.Seed = &seed

	draw := func() []int {
		rng := cfg.Source()
		vals := make([]int, 20)
		for idx := range vals {
			vals[idx] = rng.RandInt(1, 1000)
		}
		return vals
	}
	assert.Equal(t, draw(), draw())

	rng := cfg.Source()
	for idx := 0; idx < 1000; idx++ {
		u := rng.RandU01()
		assert.True(t, u > 0.0 && u < 1.0)
		v := rng.RandInt(5, 3)
		assert.True(t, v >= 3 && v <= 5)
	}

	cfg.Seed = nil
	assert.NotNil(t, cfg.Source())
}

func TestTransform(t *testing.T) {
	tp, err := ParseTopo(smallTopoText)
	require.NoError(t, err)

	td := tp.Transform()
	assert.Equal(t, []HostDesc{{Name: "h1", IP: "10.0.1.101/24", Gateway: "10.0.1.1"}}, td.Hosts)
	assert.Equal(t, []RouterDesc{
		{Name: "r2", Interfaces: []string{"10.0.7.2/24"}},
		{Name: "r1", Interfaces: []string{"10.0.1.1/24", "10.0.7.1/24"}},
	}, td.Routers)
	assert.ElementsMatch(t, []LinkDesc{{Node1: "r1", Node2: "r2"}, {Node1: "h1", Node2: "r1"}}, td.Links)

	built, err := td.Build()
	require.NoError(t, err)
	assert.Equal(t, tp.String(), built.String())
}

func TestTopoDescBuildErrors(t *testing.T) {
	valid := func() TopoDesc {
		return TopoDesc{
			Hosts:   []HostDesc{{Name: "h1", IP: "10.0.1.101/24", Gateway: "10.0.1.1"}},
			Routers: []RouterDesc{{Name: "r1", Interfaces: []string{"10.0.1.1/24"}}},
			Links:   []LinkDesc{{Node1: "h1", Node2: "r1"}},
		}
	}

	td := valid()
	_, err := td.Build()
	require.NoError(t, err)

	tests := []struct {
		name     string
		mutate   func(td *TopoDesc)
		wantKind error
	}{
		{
			name:     "router without interfaces",
			mutate:   func(td *TopoDesc) { td.Routers[0].Interfaces = nil },
			wantKind: ErrMalformedDecl,
		},
		{
			name:     "bad interface",
			mutate:   func(td *TopoDesc) { td.Routers[0].Interfaces[0] = "10.0.1.1" },
			wantKind: ErrInvalidAddress,
		},
		{
			name:     "unknown gateway",
			mutate:   func(td *TopoDesc) { td.Hosts[0].Gateway = "10.0.2.1" },
			wantKind: ErrUnknownGateway,
		},
		{
			name:     "unknown node",
			mutate:   func(td *TopoDesc) { td.Links[0].Node2 = "r2" },
			wantKind: ErrUnknownNode,
		},
		{
			name:     "host to host",
			mutate:   func(td *TopoDesc) { td.Links[0].Node2 = "h1" },
			wantKind: ErrInvalidLink,
		},
		{
			name: "duplicate name",
			mutate: func(td *TopoDesc) {
				td.Routers = append(td.Routers, RouterDesc{Name: "r1", Interfaces: []string{"10.0.2.1/24"}})
			},
			wantKind: ErrDuplicateNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := valid()
			tt.mutate(&td)
			_, err := td.Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.topo")
	require.NoError(t, os.WriteFile(present, []byte("router r1 10.0.1.1/24\n"), 0o644))
	absent := filepath.Join(dir, "absent.topo")

	ok, err := CheckReadableFiles([]string{present, ""})
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = CheckReadableFiles([]string{present, absent})
	assert.False(t, ok)
	assert.Error(t, err)

	ok, err = CheckOutputFiles([]string{absent, "local.topo"})
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = CheckOutputFiles([]string{filepath.Join(dir, "missing", "x.topo")})
	assert.False(t, ok)
	assert.Error(t, err)
}
