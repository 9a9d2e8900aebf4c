// Package browse is an interactive fuzzy finder over the flattened
// primitives of a scene.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/log"
)

// ErrNoGeometry is returned when there is nothing to browse.
var ErrNoGeometry = errors.New("no primitives to browse")

const (
	prompt        = "› "
	defaultWidth  = 80
	defaultHeight = 24
	// chrome is the number of lines around the list: title, input, status,
	// and help.
	chrome = 4
)

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	kindStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	itemStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// entry is one browsable primitive.
type entry struct {
	prim  geom.Prim
	label string
}

// model is the Bubble Tea model of the browser.
type model struct {
	ctxFunc    func() context.Context
	logger     log.Logger
	history    *History
	input      textinput.Model
	help       help.Model
	keys       keyMap
	entries    []entry
	labels     []string
	matches    fuzzy.Matches
	historyIdx int
	cursor     int
	offset     int
	width      int
	height     int
	detail     bool
	quitting   bool
}

// Run starts the browser over l. Filter queries are remembered in cacheDir;
// an empty cacheDir disables the history file.
func Run(
	ctx context.Context,
	l *geom.List,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if l == nil || len(l.Prims) == 0 {
		return ErrNoGeometry
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, BaseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "browse start",
		slog.Int("primitives", len(l.Prims)),
		slog.Int("history", history.Len()),
	)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}

	// The scene may have been read from stdin.
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		opts = append(opts, tea.WithInputTTY())
	}

	_, err = tea.NewProgram(newModel(ctx, l, history, logger), opts...).Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func newModel(
	ctx context.Context,
	l *geom.List,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Placeholder = "fuzzy filter"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth - len(prompt)

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		logger:     logger,
		history:    history,
		input:      ti,
		help:       help.New(),
		keys:       defaultKeyMap(),
		historyIdx: history.Len(),
		width:      defaultWidth,
		height:     defaultHeight,
	}

	for _, p := range l.Prims {
		e := entry{prim: p, label: label(p)}
		m.entries = append(m.entries, e)
		m.labels = append(m.labels, e.label)
	}

	m.refresh()

	return m
}

// label is the text matched by the fuzzy filter.
func label(p geom.Prim) string {
	m := p.Meta()

	var sb strings.Builder

	sb.WriteString(p.Kind.String())
	sb.WriteByte(' ')
	sb.WriteString(m.Name)

	if p.Kind != lang.KindPoint {
		fmt.Fprintf(&sb, " #%d", m.PrimitiveIndex)
	}

	if m.Color != nil {
		fmt.Fprintf(&sb, " %02x%02x%02x", m.Color[0], m.Color[1], m.Color[2])
	}

	return sb.String()
}

// refresh recomputes the matches for the current query and resets the
// selection.
func (m *model) refresh() {
	query := strings.TrimSpace(m.input.Value())

	if query == "" {
		m.matches = make(fuzzy.Matches, len(m.labels))
		for i, s := range m.labels {
			m.matches[i] = fuzzy.Match{Str: s, Index: i}
		}
	} else {
		m.matches = fuzzy.Find(query, m.labels)
	}

	m.cursor, m.offset = 0, 0
	m.detail = false
}

// selected returns the primitive under the cursor.
func (m model) selected() (geom.Prim, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return geom.Prim{}, false
	}

	return m.entries[m.matches[m.cursor].Index].prim, true
}

func (m model) listHeight() int {
	h := m.height - chrome
	if m.detail {
		if p, ok := m.selected(); ok {
			h -= len(describe(p)) + 2
		}
	}

	return max(h, 1)
}

// move moves the cursor by delta, clamped to the matches, and scrolls it
// into view.
func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.matches)-1)

	h := m.listHeight()

	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+h:
		m.offset = m.cursor - h + 1
	}
}

// recall replaces the query with the history entry at idx, or clears it
// past the newest entry.
func (m *model) recall(idx int) {
	if idx < 0 || idx > m.history.Len() {
		return
	}

	m.historyIdx = idx

	query, err := m.history.Get(idx)
	if err != nil {
		query = ""
	}

	m.input.SetValue(query)
	m.input.CursorEnd()
	m.refresh()
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - len(prompt) - 1
		m.help.Width = msg.Width
		m.move(0)

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "browse keypress", slog.String("key", msg.String()))

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true

		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		switch {
		case m.detail:
			m.detail = false
		case m.input.Value() != "":
			m.input.SetValue("")
			m.historyIdx = m.history.Len()
			m.refresh()
		default:
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.move(-1)

		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.move(1)

		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.listHeight())

		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.move(m.listHeight())

		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.recall(m.historyIdx - 1)

		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.recall(m.historyIdx + 1)

		return m, nil

	case key.Matches(msg, m.keys.Detail):
		if _, ok := m.selected(); !ok {
			return m, nil
		}

		m.detail = !m.detail

		if err := m.history.Add(m.input.Value()); err != nil {
			m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
		}

		m.historyIdx = m.history.Len()
		m.move(0)

		return m, nil
	}

	before := m.input.Value()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.historyIdx = m.history.Len()
		m.refresh()
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d/%d primitives", len(m.matches), len(m.entries))))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	h := m.listHeight()
	end := min(m.offset+h, len(m.matches))

	for i := m.offset; i < end; i++ {
		b.WriteString(renderMatch(m.matches[i], i == m.cursor, m.width))
		b.WriteString("\n")
	}

	for i := end - m.offset; i < h; i++ {
		b.WriteString("\n")
	}

	if p, ok := m.selected(); ok && m.detail {
		b.WriteString(detailStyle.Render(strings.Join(describe(p), "\n")))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderMatch renders one list line with the matched characters
// highlighted, truncated to width.
func renderMatch(match fuzzy.Match, selected bool, width int) string {
	base, hl := itemStyle, highlightStyle
	if selected {
		base = selectedStyle
		hl = selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	kindEnd := strings.IndexByte(match.Str, ' ')

	var b strings.Builder

	used := 0

	for i, r := range match.Str {
		if used >= width-1 {
			b.WriteString(hintStyle.Render("…"))

			break
		}

		style := base

		switch {
		case matched[i]:
			style = hl
		case !selected && i < kindEnd:
			style = kindStyle
		}

		b.WriteString(style.Render(string(r)))

		used++
	}

	return b.String()
}

// describe returns the detail lines of p.
func describe(p geom.Prim) []string {
	m := p.Meta()

	lines := []string{
		titleStyle.Render(m.Name),
		"kind:            " + p.Kind.String(),
	}

	if p.Kind != lang.KindPoint {
		lines = append(lines, fmt.Sprintf("primitive index: %d", m.PrimitiveIndex))
	}

	lines = append(lines,
		fmt.Sprintf("geometry index:  %d", m.GeometryIndex),
		fmt.Sprintf("opaque:          %t", m.Opaque),
	)

	if m.Color != nil {
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", m.Color[0], m.Color[1], m.Color[2]))).
			Render("  ")
		lines = append(lines, fmt.Sprintf("color:           %v %s", [3]uint8(*m.Color), swatch))
	}

	switch p.Kind {
	case lang.KindStrip:
		const shown = 8

		lines = append(lines, fmt.Sprintf("vertices:        %d", len(p.Strip.Vertices)))
		for i, v := range p.Strip.Vertices[:min(shown, len(p.Strip.Vertices))] {
			lines = append(lines, fmt.Sprintf("  [%d] %v", i, [3]float64(v)))
		}

		if n := len(p.Strip.Vertices); n > shown {
			lines = append(lines, hintStyle.Render(fmt.Sprintf("  … %d more", n-shown)))
		}

	case lang.KindRay:
		lines = append(lines,
			fmt.Sprintf("origin:          %v", [3]float64(p.Ray.Origin)),
			fmt.Sprintf("direction:       %v", [3]float64(p.Ray.Direction)),
			fmt.Sprintf("t:               [%g, %g]", p.Ray.Min, p.Ray.Max),
		)

	case lang.KindPoint:
		lines = append(lines, fmt.Sprintf("position:        %v", [3]float64(p.Point.Position)))

	case lang.KindProcedural:
		lines = append(lines,
			fmt.Sprintf("min bounds:      %v", [3]float64(p.Procedural.Bounds.Min)),
			fmt.Sprintf("max bounds:      %v", [3]float64(p.Procedural.Bounds.Max)),
		)
	}

	if m.Fields.Len() > 0 {
		lines = append(lines, "fields:")
		for k, b := range m.Fields.All() {
			lines = append(lines, fmt.Sprintf("  %s: %v", k, b.Native()))
		}
	}

	return lines
}
