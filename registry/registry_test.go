package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"genmesh/core"
)

// stubAgent is a trivial agent used to exercise the registry.
type stubAgent struct{ name string }

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Process(context.Context, *core.Request) (*core.AgentResponse, error) {
	return &core.AgentResponse{Success: true, AgentName: s.name}, nil
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := New()

	err := r.Register("writer", func() (core.Agent, error) { return &stubAgent{name: "writer"}, nil })
	assert.NoError(t, err)

	err = r.Register("writer", func() (core.Agent, error) { return &stubAgent{name: "writer"}, nil })
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = r.Register("writer", func() (core.Agent, error) { return &stubAgent{name: "writer2"}, nil }, WithOverwrite())
	assert.NoError(t, err)

	a, err := r.Resolve("writer")
	assert.NoError(t, err)
	assert.Equal(t, "writer2", a.Name())
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := New()
	_, err := r.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestRegistry_ResolveReusesSingleton(t *testing.T) {
	r := New()
	var built atomic.Int32

	err := r.Register("writer", func() (core.Agent, error) {
		built.Add(1)
		return &stubAgent{name: "writer"}, nil
	})
	assert.NoError(t, err)

	first, err := r.Resolve("writer")
	assert.NoError(t, err)
	second, err := r.Resolve("writer")
	assert.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), built.Load())
}

func TestRegistry_ConcurrentResolveConstructsOnce(t *testing.T) {
	r := New()
	var built atomic.Int32

	err := r.Register("writer", func() (core.Agent, error) {
		built.Add(1)
		return &stubAgent{name: "writer"}, nil
	})
	assert.NoError(t, err)

	const callers = 32
	instances := make([]core.Agent, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := r.Resolve("writer")
			assert.NoError(t, err)
			instances[i] = a
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	for _, a := range instances {
		assert.Same(t, instances[0], a)
	}
}

func TestRegistry_TransientConstructsPerResolve(t *testing.T) {
	r := New()
	var built atomic.Int32

	err := r.Register("sketch", func() (core.Agent, error) {
		built.Add(1)
		return &stubAgent{name: "sketch"}, nil
	}, WithTransient())
	assert.NoError(t, err)

	a, err := r.Resolve("sketch")
	assert.NoError(t, err)
	b, err := r.Resolve("sketch")
	assert.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, int32(2), built.Load())
}

func TestRegistry_FailedConstructionIsRetried(t *testing.T) {
	r := New()
	boom := errors.New("client init failed")
	var calls atomic.Int32

	err := r.Register("flaky", func() (core.Agent, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &stubAgent{name: "flaky"}, nil
	})
	assert.NoError(t, err)

	_, err = r.Resolve("flaky")
	assert.ErrorIs(t, err, boom)

	a, err := r.Resolve("flaky")
	assert.NoError(t, err)
	assert.Equal(t, "flaky", a.Name())
}

func TestRegistry_Names(t *testing.T) {
	r := New()
	assert.NoError(t, r.Register("a", func() (core.Agent, error) { return &stubAgent{name: "a"}, nil }))
	assert.NoError(t, r.Register("b", func() (core.Agent, error) { return &stubAgent{name: "b"}, nil }))

	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())
}
