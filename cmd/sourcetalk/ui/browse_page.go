package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"sourcetalk/internal/listing"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
)

// countdownTick is how often the pending-search countdown is redrawn.
const countdownTick = 100 * time.Millisecond

// Columns describes how one resource is shown in the browser.
type Columns[T any] struct {
	Headers []string
	Row     func(T) []string
	// Codename returns the codename of an item. Nil when the resource has no
	// codename filter.
	Codename func(T) string
}

// Notifier returns a change channel and the OnChange callback that feeds
// it. Notifications coalesce; the page only needs to know that something
// changed.
func Notifier() (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

type changedMsg struct{}

type countdownMsg struct{}

type browseErrMsg struct{ err error }

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func countdown() tea.Cmd {
	return tea.Tick(countdownTick, func(time.Time) tea.Msg { return countdownMsg{} })
}

// BrowsePage is the interactive listing view.
type BrowsePage[T any] struct {
	styles  Styles
	listing *listing.Listing[T]
	columns Columns[T]
	changes <-chan struct{}

	search  textinput.Model
	spinner spinner.Model
	cursor  int
	notice  string
	width   int
}

// NewBrowsePage creates a browse page for l. changes must be the channel
// returned by Notifier whose callback l was created with.
func NewBrowsePage[T any](l *listing.Listing[T], cols Columns[T], changes <-chan struct{}, styles Styles) BrowsePage[T] {
	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner))

	return BrowsePage[T]{
		styles:  styles,
		listing: l,
		columns: cols,
		changes: changes,
		search:  ti,
		spinner: sp,
		width:   100,
	}
}

// Init starts the first load.
func (p BrowsePage[T]) Init() tea.Cmd {
	l := p.listing
	return tea.Batch(
		func() tea.Msg {
			if err := l.Load(1); err != nil {
				return browseErrMsg{err}
			}
			return nil
		},
		waitForChange(p.changes),
		p.spinner.Tick,
	)
}

// Update handles keys and listing notifications.
func (p BrowsePage[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.search.Width = max(msg.Width-30, 10)
		return p, nil

	case changedMsg:
		cmds := []tea.Cmd{waitForChange(p.changes)}
		if p.listing.Snapshot().Editing {
			cmds = append(cmds, countdown())
		}
		return p, tea.Batch(cmds...)

	case countdownMsg:
		if p.listing.Snapshot().Editing {
			return p, countdown()
		}
		return p, nil

	case browseErrMsg:
		p.notice = msg.err.Error()
		return p, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return p, tea.Quit
		}
		if p.search.Focused() {
			return p.updateSearch(msg)
		}
		return p.updateKeys(msg)
	}
	return p, nil
}

func (p BrowsePage[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		p.search.Blur()
		return p, nil
	}

	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if value := p.search.Value(); value != before {
		if err := p.listing.Edit(func(fs *listing.FilterState) { fs.Search = value }); err != nil {
			p.notice = err.Error()
		}
		return p, tea.Batch(cmd, countdown())
	}
	return p, cmd
}

func (p BrowsePage[T]) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := p.listing
	p.notice = ""

	switch key := msg.String(); key {
	case "q", "esc":
		return p, tea.Quit
	case "/":
		return p, p.search.Focus()
	case "right", "n", "pgdown":
		if l.Next() {
			p.cursor = 0
		}
	case "left", "p", "pgup":
		if l.Prev() {
			p.cursor = 0
		}
	case "down", "j":
		p.cursor = min(p.cursor+1, max(len(l.Snapshot().Items)-1, 0))
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "s":
		snap := l.Snapshot()
		if err := l.SetSort(query.NextSort(snap.Resource, snap.Sort)); err != nil {
			p.notice = err.Error()
		}
		p.cursor = 0
	case "c":
		p.search.SetValue("")
		if err := l.ClearFilters(); err != nil {
			p.notice = err.Error()
		}
		p.cursor = 0
	case "r":
		if err := l.Retry(); err != nil {
			p.notice = err.Error()
		}
	case "x":
		if p.columns.Codename == nil {
			p.notice = "codename filter not available here"
			break
		}
		items := l.Snapshot().Items
		if p.cursor < len(items) {
			name := p.columns.Codename(items[p.cursor])
			if err := l.Edit(func(fs *listing.FilterState) { fs.ToggleCodename(name) }); err != nil {
				p.notice = err.Error()
			}
			return p, countdown()
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if l.GoTo(int(key[0] - '0')) {
				p.cursor = 0
			}
		}
	}
	return p, nil
}

// View renders the page.
func (p BrowsePage[T]) View() string {
	s := p.styles
	snap := p.listing.Snapshot()

	var b strings.Builder

	title := s.Header.Render("SourceTalk · " + resourceTitle(snap.Resource))
	sortBadge := s.Badge.Render("sort: " + string(snap.Sort))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, title, " ", sortBadge))
	b.WriteString("\n\n")

	b.WriteString(p.search.View())
	switch {
	case snap.Editing:
		b.WriteString(s.Muted.Render(fmt.Sprintf("  applying in %.1fs", snap.Remaining.Seconds())))
	case snap.Loading:
		b.WriteString("  " + p.spinner.View() + s.Muted.Render(" loading"))
	}
	b.WriteString("\n")

	if names := snap.Filters.SelectedCodenames(); len(names) > 0 {
		b.WriteString(s.Info.Render("codenames: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	if snap.Err != "" {
		b.WriteString(s.Error.Render("⚠ " + snap.Err))
		b.WriteString(s.Muted.Render("  (r to retry)"))
		b.WriteString("\n")
	}
	if p.notice != "" {
		b.WriteString(s.Warning.Render(p.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	table := NewTable("", p.columns.Headers...)
	table.MaxCell = max(p.width/len(p.columns.Headers)-3, 8)
	table.Empty = "No items found"
	if !snap.Loading || len(snap.Items) > 0 {
		table.Cursor = p.cursor
	}
	for _, item := range snap.Items {
		table.AddRow(p.columns.Row(item)...)
	}
	b.WriteString(table.View(s))
	b.WriteString("\n")

	if snap.Pagination.Total > 0 {
		b.WriteString(s.Subtitle.Render(fmt.Sprintf("Showing %d-%d of %s", snap.From, snap.To, humanize.Comma(int64(snap.Pagination.Total)))))
		b.WriteString("   ")
	}
	b.WriteString(renderTokens(s, snap.Tokens))
	b.WriteString("\n\n")

	b.WriteString(s.Footer.Render("/ search · ←/→ page · 1-9 go to · s sort · x codename · c clear · r retry · q quit"))
	return b.String()
}

func renderTokens(s Styles, tokens []pagination.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch {
		case t.Ellipsis:
			parts = append(parts, s.Muted.Render("…"))
		case t.Current:
			parts = append(parts, s.Badge.Render(fmt.Sprint(t.Page)))
		default:
			parts = append(parts, s.Body.Render(fmt.Sprint(t.Page)))
		}
	}
	return strings.Join(parts, " ")
}

func resourceTitle(r query.Resource) string {
	switch r {
	case query.Catalogs:
		return "Catalogs"
	case query.Materials:
		return "Materials"
	case query.Suppliers:
		return "Suppliers"
	}
	return string(r)
}
