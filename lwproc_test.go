package lwproc

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lwproc/lwproc/gen"
)

func TestDefault(t *testing.T) {
	rt := Default()
	require.True(t, rt.IsAlive())
	require.Same(t, rt, Default())
	require.Equal(t, gen.DefaultRuntimeName, rt.Name())
}

func TestInit(t *testing.T) {
	prev := Default()
	require.NoError(t, Init(gen.RuntimeOptions{Name: "init", Creation: 7, Logger: zaptest.NewLogger(t)}))
	require.False(t, prev.IsAlive())
	t.Cleanup(func() {
		require.NoError(t, Init(gen.RuntimeOptions{}))
	})

	rt := Default()
	require.Equal(t, "init", rt.Name())
	pid, err := SpawnStateless(func(gen.Pid, any) {}, gen.ProcessOptions{})
	require.NoError(t, err)
	require.Equal(t, gen.Pid{Serial: 1, Creation: 7}, pid)

	err = Init(gen.RuntimeOptions{PoolSize: -1})
	require.True(t, gen.ErrIncorrect.Equal(err), "unexpected error %v", err)
	require.Same(t, rt, Default())
}

func TestReset(t *testing.T) {
	Reset()
	pid, err := SpawnStateless(func(gen.Pid, any) {}, gen.ProcessOptions{Name: "reset"})
	require.NoError(t, err)
	require.Equal(t, gen.Pid{Serial: 1}, pid)

	Reset()
	require.Empty(t, PidList())
	_, found := ProcessByName("reset")
	require.False(t, found)

	pid, err = Spawn(gen.StatelessHandler(func(gen.Pid, any) {}), gen.ProcessOptions{Name: "reset"})
	require.NoError(t, err)
	require.Equal(t, gen.Pid{Serial: 1}, pid)
	Reset()
}

func TestSpawnStatefulTyped(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	type counter struct {
		hits  int
		total int
	}
	pid, err := SpawnStateful(counter{}, func(self gen.Pid, message any, state counter) (bool, counter) {
		state.hits++
		state.total += message.(int)
		return true, state
	}, gen.ProcessOptions{Name: "counter"})
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		Send("counter", i)
	}
	p, found := ProcessByPid(pid)
	require.True(t, found)
	require.Eventually(t, func() bool {
		return p.State() == counter{hits: 10, total: 55}
	}, 10*time.Second, time.Millisecond, "state %v", p.State())

	_, err = SpawnStateful[int](0, nil, gen.ProcessOptions{})
	require.True(t, gen.ErrIncorrect.Equal(err), "unexpected error %v", err)
}

func TestSendAndUnlink(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	received := make(chan string, 1)
	pid, err := SpawnStateless(func(self gen.Pid, message any) {
		received <- fmt.Sprint(self, " ", message)
	}, gen.ProcessOptions{Name: "echo"})
	require.NoError(t, err)

	Send(pid, "hello")
	select {
	case got := <-received:
		require.Equal(t, "<0.1.0> hello", got)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out")
	}

	Unlink(pid)
	_, found := ProcessByName("echo")
	require.False(t, found)
	Send("echo", "ignored")
	Send(pid, "ignored")
	require.Empty(t, received)
}
