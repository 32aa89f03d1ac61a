package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/wasm-cfg/analyzer"
	"github.com/wippyai/wasm-cfg/cfg"
)

// pageSize is the number of functions listed at once.
const pageSize = 20

type interactiveModel struct {
	err      error
	opts     *options
	module   *cfg.Module
	filter   textinput.Model
	visible  []*cfg.Function
	selected int
	scroll   int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateShowFunc
	stateShowCalls
)

func newInteractiveModel(opts *options) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter by name"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{
		opts:   opts,
		filter: ti,
		state:  stateSelectFunc,
	}
}

type loadedMsg struct {
	err    error
	module *cfg.Module
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.loadModule, textinput.Blink)
}

func (m *interactiveModel) loadModule() tea.Msg {
	data, err := readInput(m.opts.WasmFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	mod, err := analyzer.Analyze(context.Background(), data, m.opts.Config)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{module: mod}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateSelectFunc || m.module == nil {
				return m, tea.Quit
			}

		case "up":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
				m.keepVisible()
			}
			return m, nil

		case "down":
			if m.state == stateSelectFunc && m.selected < len(m.visible)-1 {
				m.selected++
				m.keepVisible()
			}
			return m, nil

		case "enter":
			if m.state == stateSelectFunc && len(m.visible) > 0 {
				m.state = stateShowFunc
			} else if m.state != stateSelectFunc {
				m.state = stateSelectFunc
			}
			return m, nil

		case "tab":
			switch m.state {
			case stateShowFunc:
				m.state = stateShowCalls
			case stateShowCalls:
				m.state = stateShowFunc
			}
			return m, nil

		case "esc":
			m.state = stateSelectFunc
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.module = msg.module
		m.applyFilter()
		return m, nil
	}

	if m.state == stateSelectFunc {
		prev := m.filter.Value()
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != prev {
			m.applyFilter()
		}
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) applyFilter() {
	if m.module == nil {
		return
	}
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, f := range m.module.Functions {
		if query == "" || strings.Contains(strings.ToLower(f.Name), query) {
			m.visible = append(m.visible, f)
		}
	}
	m.selected, m.scroll = 0, 0
}

func (m *interactiveModel) keepVisible() {
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+pageSize {
		m.scroll = m.selected - pageSize + 1
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.module == nil {
		return "Analyzing module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmcfg"))
	b.WriteString(" ")
	b.WriteString(m.opts.WasmFile)
	b.WriteString("  ")
	b.WriteString(helpStyle.Render(m.module.Summary().String()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		end := min(m.scroll+pageSize, len(m.visible))
		for i := m.scroll; i < end; i++ {
			f := m.visible[i]
			line := fmt.Sprintf("%4d %s", f.ID, f.Name)
			switch {
			case i == m.selected:
				b.WriteString(selectedStyle.Render("> " + line))
			case f.Failed():
				b.WriteString("  " + errorStyle.Render(line))
			default:
				b.WriteString("  " + funcStyle.Render(line))
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("  no matching functions"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter show • ctrl+c quit"))

	case stateShowFunc:
		r := newReport(&b, true)
		r.function(m.visible[m.selected])
		b.WriteString(helpStyle.Render("tab calls • enter/esc back • q quit"))

	case stateShowCalls:
		f := m.visible[m.selected]
		g := m.module.CallGraph()
		b.WriteString(funcStyle.Render(f.Name))
		b.WriteString("\n\ncalls:\n")
		writeNames(&b, g, g.Callees(f.ID))
		b.WriteString("\ncalled by:\n")
		writeNames(&b, g, g.Callers(f.ID))
		reach := g.TransitiveCallees(map[uint32]bool{f.ID: true})
		fmt.Fprintf(&b, "\nreaches %d functions transitively\n\n", len(reach)-1)
		b.WriteString(helpStyle.Render("tab blocks • enter/esc back • q quit"))
	}

	return b.String()
}

func writeNames(b *strings.Builder, g *cfg.CallGraph, idxs []uint32) {
	if len(idxs) == 0 {
		b.WriteString(helpStyle.Render("  none"))
		b.WriteString("\n")
		return
	}
	for _, idx := range idxs {
		fmt.Fprintf(b, "  %4d %s\n", idx, funcStyle.Render(g.Nodes[idx]))
	}
}

func runInteractive(opts *options) error {
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
