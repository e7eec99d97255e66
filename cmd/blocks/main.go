package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/completion"
	"github.com/wippyai/blocks/continuation"
	"github.com/wippyai/blocks/internal/platform"
	"github.com/wippyai/blocks/native"
)

func main() {
	var (
		layout      = flag.Bool("layout", false, "Print the native record layout and exit")
		calls       = flag.Int("demo", -1, "Drive a multi-call block through N invocations of the emulated runtime")
		verbose     = flag.Bool("v", false, "Log block lifecycle events")
		interactive = flag.Bool("i", false, "Interactive playground with TUI")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		block.SetLogger(l.Named("block"))
		native.SetLogger(l.Named("native"))
		continuation.SetLogger(l.Named("continuation"))
	}

	var err error
	switch {
	case *layout:
		printLayout()
	case *calls >= 0:
		err = demo(*calls)
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err = fmt.Errorf("interactive mode needs a terminal")
			break
		}
		err = runInteractive()
	default:
		fmt.Fprintln(os.Stderr, "Usage: blocks -layout")
		fmt.Fprintln(os.Stderr, "       blocks -demo N [-v]")
		fmt.Fprintln(os.Stderr, "       blocks -i  (interactive mode)")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printLayout() {
	out := abi.Describe()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		out = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Render(out)
	}
	fmt.Println(out)
	fmt.Printf("native trampolines: %v\n", platform.Native)
}

// demo builds an accumulator block, lets the emulated runtime copy it, invokes
// the heap copy n times from another goroutine and reports the final sum
// through a completion handler.
func demo(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rt := native.NewEmulated(native.WithStrictRelease())
	c, p := continuation.New[int64]()
	done := completion.Handler1(p)
	defer done.Close()
	doneHeap := rt.Copy(done.Ptr())

	type acc struct{ sum int64 }
	sum := block.NewManyEnv1(acc{}, func(a *acc, v int64) int64 {
		a.sum += v
		return a.sum
	}, block.OnRelease(func() {
		fmt.Println("accumulator released")
	}))

	heap := rt.Copy(sum.Ptr())
	sum.Close()
	fmt.Printf("record %s escaped: %v signature: %s\n", sum.Kind(), sum.Escaped(), sum.Signature())

	go func() {
		var last uintptr
		for i := 1; i <= n; i++ {
			last = rt.Invoke(heap, uintptr(i))
		}
		rt.Release(heap)
		rt.Invoke(doneHeap, last)
		rt.Release(doneHeap)
	}()

	total, err := c.Await(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sum of 1..%d = %d\n", n, total)
	fmt.Printf("heap copies: made %d, freed %d, live %d; live cells: %d\n",
		rt.Copies(), rt.Frees(), rt.Live(), block.LiveCells())
	for _, l := range block.Live() {
		fmt.Printf("  held: %s refs %d once %v fired %v\n", l.Signature, l.Refs, l.Once, l.Fired)
	}
	return nil
}
