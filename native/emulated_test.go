package native_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/internal/platform"
	"github.com/wippyai/blocks/native"
)

func TestCopyStackRecord(t *testing.T) {
	rt := native.NewEmulated()
	b := block.NewMany1(func(v uint32) uint32 { return v + 1 })

	heap := rt.Copy(b.Ptr())
	b.Close()
	require.NotEqual(t, b.Ptr(), heap)

	rec := abi.At(heap)
	assert.True(t, rec.Flags.Has(abi.FlagNeedsFree))
	assert.True(t, rec.Flags.Has(abi.FlagHasCopyDispose))
	assert.Equal(t, 1, native.RefCount(heap))
	assert.Equal(t, b.Record().Payload, rec.Payload)
	assert.Equal(t, b.Record().Descriptor, rec.Descriptor)
	assert.Equal(t, 1, rt.Live())
	assert.Equal(t, 1, rt.Copies())

	assert.Equal(t, uintptr(5), rt.Invoke(heap, 4))

	rt.Release(heap)
	assert.Zero(t, rt.Live())
	assert.Equal(t, 1, rt.Frees())
}

func TestRetainRelease(t *testing.T) {
	rt := native.NewEmulated()
	released := 0
	b := block.NewMany0(func() int { return 0 }, block.OnRelease(func() { released++ }))
	heap := rt.Copy(b.Ptr())
	b.Close()

	for i := 2; i <= 5; i++ {
		assert.Equal(t, heap, rt.Copy(heap))
		assert.Equal(t, i, native.RefCount(heap))
	}
	for i := 4; i >= 1; i-- {
		rt.Release(heap)
		assert.Equal(t, i, native.RefCount(heap))
	}
	assert.Zero(t, released)

	rt.Release(heap)
	assert.Equal(t, 1, released)
	assert.Equal(t, 1, rt.Frees())
}

func TestConcurrentRetainRelease(t *testing.T) {
	rt := native.NewEmulated()
	released := 0
	b := block.NewMany0(func() int { return 0 }, block.OnRelease(func() { released++ }))
	heap := rt.Copy(b.Ptr())
	b.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				rt.Release(rt.Copy(heap))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, native.RefCount(heap))
	rt.Release(heap)
	assert.Equal(t, 1, released)
}

func TestGlobalRecord(t *testing.T) {
	rt := native.NewEmulated()
	b := block.NewMany0(func() int { return 3 }, block.Static())

	assert.Equal(t, b.Ptr(), rt.Copy(b.Ptr()))
	rt.Release(b.Ptr())
	assert.Zero(t, rt.Copies())
	assert.Equal(t, uintptr(3), rt.Invoke(b.Ptr()))
}

func TestNoEscapeCopy(t *testing.T) {
	rt := native.NewEmulated()
	b := block.NewMany0(func() int { return 4 }, block.NoEscape())
	defer b.Close()

	heap := rt.Copy(b.Ptr())
	assert.False(t, abi.At(heap).Flags.Has(abi.FlagHasCopyDispose))
	assert.Equal(t, uintptr(4), rt.Invoke(heap))
	rt.Release(heap)
	assert.Zero(t, rt.Live())
}

func TestNilBlock(t *testing.T) {
	rt := native.NewEmulated()
	assert.Nil(t, rt.Copy(nil))
	rt.Release(nil)
}

func TestReleaseStackRecord(t *testing.T) {
	b := block.NewMany0(func() int { return 0 })
	defer b.Close()

	native.NewEmulated().Release(b.Ptr())

	strict := native.NewEmulated(native.WithStrictRelease())
	err := violation(t, func() { strict.Release(b.Ptr()) })
	assert.Equal(t, errors.KindInvalidRecord, err.Kind)
}

func TestStrictUseAfterFree(t *testing.T) {
	rt := native.NewEmulated(native.WithStrictRelease())
	b := block.NewMany0(func() int { return 0 })
	heap := rt.Copy(b.Ptr())
	b.Close()
	rt.Release(heap)

	err := violation(t, func() { rt.Invoke(heap) })
	assert.Equal(t, errors.PhaseInvoke, err.Phase)
	assert.Equal(t, errors.KindInvalidRecord, err.Kind)

	err = violation(t, func() { rt.Release(heap) })
	assert.Equal(t, errors.PhaseDispose, err.Phase)
}

func TestInvokeUnknownRecord(t *testing.T) {
	rt := native.NewEmulated()
	var rec abi.Record
	err := violation(t, func() { rt.Invoke(unsafe.Pointer(&rec)) })
	assert.Equal(t, errors.KindInvalidRecord, err.Kind)
}

func TestInvokeArity(t *testing.T) {
	if platform.Native {
		t.Skip("C trampolines cannot see how many words the caller passed")
	}
	rt := native.NewEmulated()
	b := block.NewMany2(func(a, b int64) int64 { return a + b })
	defer b.Close()

	err := violation(t, func() { rt.Invoke(b.Ptr(), 1) })
	assert.Equal(t, errors.KindArity, err.Kind)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rt := native.NewEmulated(native.WithLogger(zap.New(core)))

	b := block.NewMany0(func() int { return 0 })
	heap := rt.Copy(b.Ptr())
	b.Close()
	rt.Copy(heap)
	rt.Release(heap)
	rt.Release(heap)

	assert.Equal(t, 1, logs.FilterMessage("block copied to heap").Len())
	assert.Equal(t, 1, logs.FilterMessage("block retained").Len())
	assert.Equal(t, 1, logs.FilterMessage("block released").Len())
	assert.Equal(t, 1, logs.FilterMessage("block freed").Len())
}

func violation(t *testing.T, fn func()) *errors.Error {
	t.Helper()
	var got *errors.Error
	func() {
		defer func() {
			var ok bool
			got, ok = errors.Violation(recover())
			require.True(t, ok, "expected a contract violation panic")
		}()
		fn()
	}()
	return got
}
