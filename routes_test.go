package topogen

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainTopoText is the chain r1 - r2 - r3 - r4 with a shortcut r1 - r3, hosts on r1 and r4,
// and r5 cut off from the rest
const chainTopoText = `router r1 10.0.1.1/24 10.0.10.1/24 10.0.13.1/24
router r2 10.0.10.2/24 10.0.11.2/24
router r3 10.0.11.3/24 10.0.12.3/24 10.0.13.3/24
router r4 10.0.12.4/24 10.0.2.4/24
router r5 10.0.3.5/24
host h1 10.0.1.101/24 10.0.1.1
host h2 10.0.2.102/24 10.0.2.4
host h3 10.0.3.103/24 10.0.3.5
link h1 r1
link h2 r4
link h3 r5
link r1 r2
link r2 r3
link r3 r4
link r1 r3
`

func TestRoute(t *testing.T) {
	tp, err := ParseTopo(chainTopoText)
	require.NoError(t, err)
	rf := CreateRouteFinder(tp)

	tests := []struct {
		src, dst string
		want     []string
	}{
		{src: "r1", dst: "r4", want: []string{"r1", "r3", "r4"}},
		{src: "r4", dst: "r1", want: []string{"r4", "r3", "r1"}},
		{src: "h1", dst: "h2", want: []string{"h1", "r1", "r3", "r4", "h2"}},
		{src: "h2", dst: "r2", want: []string{"h2", "r4", "r3", "r2"}},
		{src: "h1", dst: "r1", want: []string{"h1", "r1"}},
		{src: "r2", dst: "r2", want: []string{"r2"}},
		{src: "h3", dst: "r5", want: []string{"h3", "r5"}},
	}

	for _, tt := range tests {
		route, err := rf.Route(tt.src, tt.dst)
		require.NoError(t, err, "%s to %s", tt.src, tt.dst)
		assert.Equal(t, tt.want, route, "%s to %s", tt.src, tt.dst)
	}

	hops, err := rf.Hops("h1", "h2")
	require.NoError(t, err)
	assert.Equal(t, 4, hops)
	assert.Equal(t, "r1,r3,r4", ShowRoute([]string{"r1", "r3", "r4"}))
}

func TestRouteErrors(t *testing.T) {
	tp, err := ParseTopo(chainTopoText)
	require.NoError(t, err)
	rf := CreateRouteFinder(tp)

	_, err = rf.Route("h1", "h3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRoute))

	_, err = rf.Route("r1", "r9")
	assert.True(t, errors.Is(err, ErrUnknownNode))

	_, err = rf.Route("r9", "r9")
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestRouteAfterRepair(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		tg, sa := createSeededGenerator(seed)
		tp, err := tg.GenTopo(intPtr(4), intPtr(8), 0.1)
		require.NoError(t, err)
		_, err = tp.EnsureConnected(sa, NewSeededSource(seed))
		require.NoError(t, err)

		rf := CreateRouteFinder(tp)
		for _, src := range tp.Hosts {
			for _, dst := range tp.Hosts {
				route, err := rf.Route(src.Name, dst.Name)
				require.NoError(t, err, "seed %d", seed)
				assert.Equal(t, src.Name, route[0])
				assert.Equal(t, dst.Name, route[len(route)-1])
			}
		}
	}
}
