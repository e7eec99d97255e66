package completion

import (
	"context"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/continuation"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/native"
)

// asyncCall mimics a native API that retains the handler and calls it later
// from another thread.
func asyncCall(rt native.Runtime, blk unsafe.Pointer, args ...uintptr) {
	heap := rt.Copy(blk)
	go func() {
		time.Sleep(time.Millisecond)
		rt.Invoke(heap, args...)
		rt.Release(heap)
	}()
}

func TestHandler0(t *testing.T) {
	rt := native.NewEmulated()
	c, p := continuation.New[struct{}]()
	h := Handler0(p)
	asyncCall(rt, h.Ptr())
	h.Close()

	_, err := c.Await(context.Background())
	require.NoError(t, err)
}

func TestHandler1(t *testing.T) {
	rt := native.NewEmulated()
	c, p := continuation.New[uintptr]()
	h := Handler1(p)
	asyncCall(rt, h.Ptr(), 0xbeef)
	h.Close()

	got, err := c.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uintptr(0xbeef), got)
}

func TestHandler2(t *testing.T) {
	rt := native.NewEmulated()
	c, p := continuation.New[Args2[int32, uint64]]()
	h := Handler2(p)
	assert.Equal(t, "v20@?0i8Q12", h.Signature())

	neg, big := int32(-4), uint64(1<<40)
	asyncCall(rt, h.Ptr(), uintptr(neg), uintptr(big))
	h.Close()

	got, err := c.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Args2[int32, uint64]{A: -4, B: 1 << 40}, got)
}

func TestHandler3(t *testing.T) {
	rt := native.NewEmulated()
	c, p := continuation.New[Args3[uintptr, uintptr, uintptr]]()
	h := Handler3(p)
	asyncCall(rt, h.Ptr(), 1, 2, 3)
	h.Close()

	got, err := c.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Args3[uintptr, uintptr, uintptr]{A: 1, B: 2, C: 3}, got)
}

func TestHandlerFiredTwice(t *testing.T) {
	rt := native.NewEmulated()
	_, p := continuation.New[int64]()
	h := Handler1(p)
	defer h.Close()

	rt.Invoke(h.Ptr(), 1)
	func() {
		defer func() {
			err, ok := errors.Violation(recover())
			require.True(t, ok)
			assert.Equal(t, errors.KindConsumed, err.Kind)
		}()
		rt.Invoke(h.Ptr(), 2)
	}()
}

func TestHandlerReleasedWithoutFiring(t *testing.T) {
	rt := native.NewEmulated()
	c, p := continuation.New[uintptr]()
	h := Handler1(p)

	heap := rt.Copy(h.Ptr())
	h.Close()
	assert.False(t, p.Posted())

	rt.Release(heap)
	assert.True(t, p.Posted())

	_, err := c.Await(context.Background())
	assert.ErrorIs(t, err, continuation.ErrAbandoned)
}

func TestHandlerNoEscape(t *testing.T) {
	rt := native.NewEmulated()
	c, p := continuation.New[uintptr]()
	h := Handler1(p, block.NoEscape())

	rt.Invoke(h.Ptr(), 5)
	h.Close()

	got, ok, err := c.Poll(continuation.WakerFunc(func() {}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uintptr(5), got)
}

func TestHandlerKeepsCallerOptions(t *testing.T) {
	released := 0
	opts := make([]block.Option, 1, 4)
	opts[0] = block.OnRelease(func() { released++ })

	_, p1 := continuation.New[uintptr]()
	_, p2 := continuation.New[uintptr]()
	h1 := Handler1(p1, opts...)
	h2 := Handler1(p2, opts...)

	assert.Nil(t, opts[:cap(opts)][1], "caller's spare capacity must stay untouched")

	h1.Close()
	assert.True(t, p1.Posted())
	assert.False(t, p2.Posted())
	h2.Close()
	assert.True(t, p2.Posted())
	assert.Equal(t, 2, released)
}

type operation struct {
	h         *block.Once1[uintptr, abi.Void]
	cancelled bool
}

func (o *operation) Cancel() { o.cancelled = true }
func (o *operation) Close()  { o.h.Close() }

func TestTaskBeginsLazily(t *testing.T) {
	rt := native.NewEmulated()
	began := 0
	task := Begin(func(p *continuation.Completer[uintptr]) *operation {
		began++
		op := &operation{h: Handler1(p)}
		asyncCall(rt, op.h.Ptr(), 77)
		return op
	})

	_, ok := task.Begun()
	assert.False(t, ok)
	assert.Zero(t, began)

	got, err := task.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uintptr(77), got)
	assert.Equal(t, 1, began)

	_, ok = task.Begun()
	assert.False(t, ok)
}

func TestTaskPoll(t *testing.T) {
	rt := native.NewEmulated()
	var heap unsafe.Pointer
	task := Begin(func(p *continuation.Completer[uintptr]) *block.Once1[uintptr, abi.Void] {
		h := Handler1(p)
		heap = rt.Copy(h.Ptr())
		return h
	})

	woken := 0
	w := continuation.WakerFunc(func() { woken++ })
	_, ok, err := task.Poll(w)
	require.NoError(t, err)
	require.False(t, ok)

	h, ok := task.Begun()
	require.True(t, ok)
	assert.True(t, h.Escaped())

	rt.Invoke(heap, 9)
	rt.Release(heap)
	assert.Equal(t, 1, woken)

	got, ok, err := task.Poll(w)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uintptr(9), got)
}

func TestTaskCancel(t *testing.T) {
	var op *operation
	task := Begin(func(p *continuation.Completer[uintptr]) *operation {
		op = &operation{h: Handler1(p)}
		return op
	})

	_, ok, err := task.Poll(continuation.WakerFunc(func() {}))
	require.NoError(t, err)
	require.False(t, ok)

	task.Cancel()
	assert.True(t, op.cancelled)
	assert.False(t, op.h.Escaped())
}

func TestTaskAwaitContextDone(t *testing.T) {
	var op *operation
	task := Begin(func(p *continuation.Completer[uintptr]) *operation {
		op = &operation{h: Handler1(p)}
		return op
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := task.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, op.cancelled)
}

func TestTaskCancelBeforeStart(t *testing.T) {
	began := false
	task := Begin(func(p *continuation.Completer[int]) struct{} {
		began = true
		return struct{}{}
	})
	task.Cancel()
	assert.False(t, began)
}
