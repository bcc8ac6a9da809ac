// internal/tui/chat.go
// Package tui provides the interactive chat interface for Poegate.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/poegate/poegate/internal/appconfig"
	"github.com/poegate/poegate/internal/models"
	"github.com/poegate/poegate/internal/util"
)

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewModelSelector is the state where the user selects a model.
	viewModelSelector viewState = iota
	// viewChat is the state where the user is interacting with the chat.
	viewChat
)

// chatTurn pairs a prompt with the reply it received.
type chatTurn = models.Turn

// chatModel is the main application model for the Bubble Tea UI.
type chatModel struct {
	ctx              context.Context
	config           *appconfig.Config
	registered       []models.Model
	state            viewState
	isLoading        bool
	err              error
	modelList        list.Model
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	turns            []chatTurn
	pendingPrompt    string
	responseBuf      strings.Builder
	responseMeta     models.Metadata
	selected         models.Model
	width, height    int
	program          *tea.Program
	requestStartTime time.Time
}

// initialChatModel creates and initializes a new chatModel with default values.
func initialChatModel(ctx context.Context, cfg *appconfig.Config, registered []models.Model) *chatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.Prompt = "Ask Anything: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	items := make([]list.Item, len(registered))
	for i, m := range registered {
		items[i] = item{title: m.Name(), desc: modelItemDesc(m)}
	}
	modelList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	modelList.Title = "Select a Poe Model"

	vp := viewport.New(100, 5)

	return &chatModel{
		ctx:        ctx,
		config:     cfg,
		registered: registered,
		state:      viewModelSelector,
		spinner:    s,
		textArea:   ta,
		modelList:  modelList,
		viewport:   vp,
	}
}

// modelItemDesc builds the selector description line for a model entry.
func modelItemDesc(m models.Model) string {
	mode := "buffered"
	if m.CanStream() {
		mode = "streaming"
	}
	return fmt.Sprintf("%s  %s  %s", m.Modality(), mode, util.TruncateRunes(m.ID(), 40))
}

// item represents a selectable item in a Bubble Tea list.
type item struct {
	title string
	desc  string
}

// Title returns the title of the list item.
func (i item) Title() string { return i.title }

// Description returns the description of the list item.
func (i item) Description() string { return i.desc }

// FilterValue returns the title of the item, used for filtering.
func (i item) FilterValue() string { return i.title }

// streamChunkMsg is a message sent when a new fragment of a streaming response is received.
type streamChunkMsg string

// streamEndMsg is a message sent when a response has completed.
type streamEndMsg struct{ meta models.Metadata }

// streamErr is a message sent when an error occurs during a response.
type streamErr struct{ error }

// tickMsg is a message sent at regular intervals, used for animations and timed updates.
type tickMsg time.Time

// streamChatCmd creates a Bubble Tea command that sends the pending prompt to
// the selected model and forwards fragments back into the program.
func streamChatCmd(ctx context.Context, p *tea.Program, m models.Model, req models.Request) tea.Cmd {
	return func() tea.Msg {
		go func() {
			err := m.Stream(ctx, req, models.Callbacks{
				OnChunk: func(fragment string) error {
					p.Send(streamChunkMsg(fragment))
					return nil
				},
				OnComplete: func(meta models.Metadata) error {
					p.Send(streamEndMsg{meta: meta})
					return nil
				},
			})
			if err != nil {
				p.Send(streamErr{error: err})
			}
		}()

		return nil
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the Bubble Tea model and returns a command to start the spinner animation.
func (m *chatModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is the central update function for the Bubble Tea model.
func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.state == viewChat && !m.isLoading {
				m.state = viewModelSelector
				m.turns = nil
				m.err = nil
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.modelList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 3
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight

	case streamChunkMsg:
		m.responseBuf.WriteString(string(msg))
		m.viewport.GotoBottom()
		return m, nil

	case streamEndMsg:
		m.responseMeta = msg.meta
		m.turns = append(m.turns, chatTurn{
			Prompt:   m.pendingPrompt,
			Response: m.responseBuf.String(),
		})
		m.pendingPrompt = ""
		m.responseBuf.Reset()
		m.isLoading = false
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case streamErr:
		m.isLoading = false
		m.pendingPrompt = ""
		m.responseBuf.Reset()
		m.err = msg.error
		m.textArea.Focus()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewModelSelector:
		m.modelList, cmd = m.modelList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if _, ok := m.modelList.SelectedItem().(item); ok {
				m.selected = m.registered[m.modelList.Index()]
				m.state = viewChat
				m.err = nil
				m.textArea.Focus()
				m.viewport.GotoBottom()
			}
		}

	case viewChat:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			userInput := strings.TrimSpace(m.textArea.Value())
			if userInput != "" && !m.isLoading {
				m.responseMeta = models.Metadata{}
				m.requestStartTime = time.Now()
				req := models.Request{Prompt: userInput, History: m.turns}
				m.pendingPrompt = userInput
				m.textArea.Reset()
				m.isLoading = true
				m.err = nil

				cmds = append(cmds, m.spinner.Tick, streamChatCmd(m.ctx, m.program, m.selected, req), tickCmd())
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the application's UI based on the current state of the model.
func (m *chatModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewModelSelector:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.modelList.View())

	case viewChat:
		return m.chatView()

	default:
		return "Unknown state"
	}
}

// chatView renders the chat interface, including the header, conversation
// history, current response (if streaming), and the input text area.
func (m *chatModel) chatView() string {
	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1)

	status := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("Model:"),
		headerStyle.Render(m.selected.Name()),
		headerStyle.MarginLeft(1).Render(string(m.selected.Modality())),
	)
	help := lipgloss.NewStyle().Render(" (tab to change model, esc to quit)")
	builder.WriteString(status + help + "\n\n")

	m.viewport.SetContent(renderTurns(m.turns, m.pendingPrompt, m.responseBuf.String(), m.width))
	builder.WriteString(m.viewport.View())

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		builder.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString("\n" + m.spinner.View() + fmt.Sprintf(" Assistant is thinking... %ss", timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	if m.config.Debug && m.responseMeta.Model != "" {
		builder.WriteString("\n" + formatMeta(m.responseMeta))
	}

	return builder.String()
}

// renderTurns formats the conversation, plus any in-flight exchange, for the viewport.
func renderTurns(turns []chatTurn, pendingPrompt, partial string, width int) string {
	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	var b strings.Builder
	writeLine := func(role, content string) {
		wrapped := lipgloss.NewStyle().Width(util.Max(width-lipgloss.Width(role)-2, 10)).Render(content)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
	}

	for _, t := range turns {
		writeLine(userStyle.Render("You: "), t.Prompt)
		writeLine(assistantStyle.Render("Assistant: "), t.Response)
	}

	if pendingPrompt != "" {
		writeLine(userStyle.Render("You: "), pendingPrompt)
	}
	if partial != "" {
		writeLine(assistantStyle.Render("Assistant: "), partial)
	}

	return b.String()
}

// formatMeta formats response metadata into a human-readable string.
func formatMeta(meta models.Metadata) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return style.Render(fmt.Sprintf(
		"  >>> [Model: %s] [Finish: %s] [Prompt Tokens: %d] [Completion Tokens: %d]",
		meta.Model,
		meta.FinishReason,
		meta.Usage.PromptTokens,
		meta.Usage.CompletionTokens,
	))
}

// StartChat initializes and runs the interactive chat TUI.
func StartChat(ctx context.Context, cfg *appconfig.Config, registered []models.Model, cancel context.CancelFunc) {
	defer func() {
		log.Println("Cancelling all running requests...")
		cancel()
	}()

	if cfg == nil {
		log.Fatalf("Failed to start: configuration is not loaded")
	}
	if len(registered) == 0 {
		log.Fatalf("Failed to start: no models registered")
	}

	m := initialChatModel(ctx, cfg, registered)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
