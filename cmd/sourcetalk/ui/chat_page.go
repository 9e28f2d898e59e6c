package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"sourcetalk/internal/chat"
	"sourcetalk/internal/relay"
)

const (
	chatHeaderHeight = 2
	chatInputHeight  = 3
)

type replyMsg struct{ resp relay.Response }

// ChatPage is the interactive chat view.
type ChatPage struct {
	styles  Styles
	session *chat.Session
	ctx     context.Context
	timeout time.Duration

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	ready    bool
	notice   string
}

// NewChatPage creates a chat page. Each turn runs under ctx, bounded by
// timeout when it is positive.
func NewChatPage(ctx context.Context, session *chat.Session, timeout time.Duration, styles Styles) ChatPage {
	ti := textinput.New()
	ti.Placeholder = "Ask about materials, prices or suppliers…"
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	return ChatPage{
		styles:  styles,
		session: session,
		ctx:     ctx,
		timeout: timeout,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner)),
	}
}

// Init starts the cursor blink.
func (p ChatPage) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input and replies.
func (p ChatPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chatHeaderHeight-chatInputHeight, 1)
		if !p.ready {
			p.viewport = viewport.New(msg.Width, height)
			p.ready = true
		} else {
			p.viewport.Width = msg.Width
			p.viewport.Height = height
		}
		p.input.Width = max(msg.Width-4, 10)
		p.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(msg.Width-4, 20)),
		)
		p.refresh()
		return p, nil

	case replyMsg:
		p.refresh()
		return p, nil

	case spinner.TickMsg:
		if !p.session.Typing() {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		p.refresh()
		return p, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return p, tea.Quit
		case tea.KeyCtrlN:
			p.session.Reset()
			p.notice = ""
			p.refresh()
			return p, nil
		case tea.KeyEsc:
			p.session.ClearError()
			p.notice = ""
			return p, nil
		case tea.KeyEnter:
			return p.send()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			p.viewport, cmd = p.viewport.Update(msg)
			return p, cmd
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p ChatPage) send() (tea.Model, tea.Cmd) {
	turn, err := p.session.Begin(p.input.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return p, nil
	case err != nil:
		p.notice = err.Error()
		return p, nil
	}
	p.notice = ""
	p.input.Reset()
	p.refresh()

	ctx, timeout := p.ctx, p.timeout
	return p, tea.Batch(p.spinner.Tick, func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return replyMsg{resp: turn.Complete(ctx)}
	})
}

func (p *ChatPage) refresh() {
	if !p.ready {
		return
	}
	p.viewport.SetContent(p.renderHistory())
	p.viewport.GotoBottom()
}

func (p ChatPage) renderHistory() string {
	s := p.styles
	msgs := p.session.Messages()
	if len(msgs) == 0 {
		return s.Muted.Render("No messages yet. Type a question and press enter.")
	}

	var b strings.Builder
	for _, m := range msgs {
		stamp := s.Muted.Render(" · " + humanize.Time(m.Timestamp))
		switch m.Role {
		case chat.RoleUser:
			b.WriteString(s.Prompt.Render("You") + stamp + "\n")
			b.WriteString(s.UserInput.Render(m.Content))
		default:
			b.WriteString(s.Info.Render("Assistant") + stamp + "\n")
			if m.Loading {
				b.WriteString(p.spinner.View() + s.Muted.Render(" typing…"))
			} else {
				b.WriteString(s.AgentResponse.Render(p.markdown(m.Content)))
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (p ChatPage) markdown(content string) string {
	if p.renderer == nil {
		return content
	}
	out, err := p.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

// View renders the page.
func (p ChatPage) View() string {
	s := p.styles
	var b strings.Builder

	b.WriteString(s.Header.Render("SourceTalk · Chat"))
	b.WriteString(s.Muted.Render("  enter send · ctrl+n new chat · esc dismiss error · ctrl+c quit"))
	b.WriteString("\n")

	if p.ready {
		b.WriteString(p.viewport.View())
	} else {
		b.WriteString(p.renderHistory())
	}
	b.WriteString("\n")

	if e := p.session.Err(); e != "" {
		b.WriteString(s.Error.Render("⚠ " + e))
		b.WriteString("\n")
	} else if p.notice != "" {
		b.WriteString(s.Warning.Render(p.notice))
		b.WriteString("\n")
	}
	b.WriteString(p.input.View())
	return b.String()
}
