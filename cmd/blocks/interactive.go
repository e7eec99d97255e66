package main

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/completion"
	"github.com/wippyai/blocks/continuation"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/native"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	sigStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// wrapper is what the playground needs from any block wrapper.
type wrapper interface {
	Ptr() unsafe.Pointer
	Close()
	Kind() abi.Kind
	Signature() string
	Escaped() bool
	Refs() int
}

type entry struct {
	name   string
	blk    wrapper
	heap   []unsafe.Pointer
	arity  int
	closed bool
}

type modelState int

const (
	stateBrowse modelState = iota
	stateInputArg
)

type interactiveModel struct {
	rt       *native.Emulated
	cont     *continuation.Continuation[uintptr]
	err      error
	entries  []*entry
	log      []string
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel() *interactiveModel {
	c, p := continuation.New[uintptr]()

	acc := block.NewManyEnv1(int64(0), func(sum *int64, v int64) int64 {
		*sum += v
		return *sum
	})
	once := block.NewOnce0(func() abi.Void { return 0 })

	ti := textinput.New()
	ti.Prompt = "arg: "
	ti.Placeholder = "integer"
	ti.Width = 20

	return &interactiveModel{
		rt:   native.NewEmulated(native.WithStrictRelease()),
		cont: c,
		entries: []*entry{
			{name: "accumulator", blk: acc, arity: 1},
			{name: "completion", blk: completion.Handler1(p), arity: 1},
			{name: "once", blk: once},
		},
		input: ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateInputArg {
		switch key.String() {
		case "enter":
			v, err := strconv.ParseInt(strings.TrimSpace(m.input.Value()), 0, 64)
			m.state = stateBrowse
			m.input.Blur()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.invoke(uintptr(v))
			return m, nil
		case "esc":
			m.state = stateBrowse
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	e := m.entries[m.selected]
	m.err = nil
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
	case "c":
		m.guard(func() {
			e.heap = append(e.heap, m.rt.Copy(e.blk.Ptr()))
			m.record("copy %s -> %d heap copies", e.name, len(e.heap))
		})
	case "r":
		if len(e.heap) == 0 {
			m.err = fmt.Errorf("%s has no heap copy to release", e.name)
			break
		}
		m.guard(func() {
			last := e.heap[len(e.heap)-1]
			e.heap = e.heap[:len(e.heap)-1]
			m.rt.Release(last)
			m.record("release %s", e.name)
		})
	case "x":
		e.blk.Close()
		e.closed = true
		m.record("close %s", e.name)
	case "i", "enter":
		if e.arity == 0 {
			m.invoke()
			break
		}
		m.input.SetValue("")
		m.input.Focus()
		m.state = stateInputArg
		return m, textinput.Blink
	}
	return m, nil
}

// invoke calls the selected record's most recent heap copy, or the stack record
// if it never escaped.
func (m *interactiveModel) invoke(args ...uintptr) {
	e := m.entries[m.selected]
	target := e.blk.Ptr()
	if len(e.heap) > 0 {
		target = e.heap[len(e.heap)-1]
	}
	m.guard(func() {
		r := m.rt.Invoke(target, args...)
		m.record("invoke %s%v = %d", e.name, args, int64(r))
	})
	m.pollCompletion()
}

func (m *interactiveModel) pollCompletion() {
	if !m.cont.Ready() {
		return
	}
	v, ok, err := m.cont.Poll(continuation.WakerFunc(func() {}))
	switch {
	case err != nil:
		m.record("continuation: %v", err)
	case ok:
		m.record("continuation resumed with %d", v)
	}
}

// guard turns contract violations into an on-screen error.
func (m *interactiveModel) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if v, ok := errors.Violation(r); ok {
				m.err = v
				return
			}
			panic(r)
		}
	}()
	fn()
}

func (m *interactiveModel) record(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > 8 {
		m.log = m.log[len(m.log)-8:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Blocks Playground"))
	b.WriteString(fmt.Sprintf(" heap copies %d, live cells %d\n\n", m.rt.Live(), block.LiveCells()))

	for i, e := range m.entries {
		line := m.formatEntry(e)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, l := range m.log {
		b.WriteString(resultStyle.Render(l))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateInputArg {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter invoke • esc back"))
		return b.String()
	}
	b.WriteString(helpStyle.Render("↑/↓ select • c copy • i invoke • r release • x close • q quit"))
	return b.String()
}

func (m *interactiveModel) formatEntry(e *entry) string {
	state := "stack"
	switch {
	case e.blk.Escaped():
		state = fmt.Sprintf("escaped, %d heap copies, state refs %d", len(e.heap), e.blk.Refs())
		if len(e.heap) > 0 {
			state += fmt.Sprintf(", refs %d", native.RefCount(e.heap[len(e.heap)-1]))
		}
	case e.closed && len(e.heap) == 0:
		state = "released"
	}
	return nameStyle.Render(e.name) + " " + sigStyle.Render(e.blk.Signature()) + " " + e.blk.Kind().String() + " (" + state + ")"
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
