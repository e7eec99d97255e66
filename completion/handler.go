package completion

import (
	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/continuation"
)

// Args2 carries the arguments of a two-argument completion handler.
type Args2[A, B any] struct {
	A A
	B B
}

// Args3 carries the arguments of a three-argument completion handler.
type Args3[A, B, C any] struct {
	A A
	B B
	C C
}

// withAbandon adds the release hook without writing into the caller's slice.
func withAbandon[T any](p *continuation.Completer[T], opts []block.Option) []block.Option {
	return append(opts[:len(opts):len(opts)], block.OnRelease(p.Abandon))
}

// Handler0 returns a void once block that posts to p when fired. If the record
// is released without firing, p is abandoned.
func Handler0(p *continuation.Completer[struct{}], opts ...block.Option) *block.Once0[abi.Void] {
	return block.NewOnce0(func() abi.Void {
		p.Post(struct{}{})
		return 0
	}, withAbandon(p, opts)...)
}

// Handler1 returns a void once block posting its argument to p.
func Handler1[A abi.Word](p *continuation.Completer[A], opts ...block.Option) *block.Once1[A, abi.Void] {
	return block.NewOnce1(func(a A) abi.Void {
		p.Post(a)
		return 0
	}, withAbandon(p, opts)...)
}

// Handler2 returns a void once block posting both arguments to p.
func Handler2[A, B abi.Word](p *continuation.Completer[Args2[A, B]], opts ...block.Option) *block.Once2[A, B, abi.Void] {
	return block.NewOnce2(func(a A, b B) abi.Void {
		p.Post(Args2[A, B]{A: a, B: b})
		return 0
	}, withAbandon(p, opts)...)
}

// Handler3 returns a void once block posting all three arguments to p.
func Handler3[A, B, C abi.Word](p *continuation.Completer[Args3[A, B, C]], opts ...block.Option) *block.Once3[A, B, C, abi.Void] {
	return block.NewOnce3(func(a A, b B, c C) abi.Void {
		p.Post(Args3[A, B, C]{A: a, B: b, C: c})
		return 0
	}, withAbandon(p, opts)...)
}
