package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPid(t *testing.T) {
	a := Pid{ID: 0, Serial: 1, Creation: 0}
	b := Pid{ID: 0, Serial: 1, Creation: 1}

	require.Equal(t, "<0.1.0>", a.String())
	require.Equal(t, "<0.1.1>", b.String())
	require.NotEqual(t, a, b)
	require.Equal(t, a, Pid{Serial: 1})
	require.True(t, Pid{}.IsZero())
	require.False(t, a.IsZero())

	// all three fields take part in the hashing
	m := map[Pid]int{a: 1, b: 2, {ID: 1, Serial: 1}: 3}
	require.Len(t, m, 3)
	require.Equal(t, 2, m[Pid{Serial: 1, Creation: 1}])
}
