package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/config"
	"github.com/yildizm/ChatLens/internal/emoji"
	"github.com/yildizm/ChatLens/internal/logger"
	"github.com/yildizm/ChatLens/internal/surface"
	"github.com/yildizm/ChatLens/internal/ui/components"
	"github.com/yildizm/ChatLens/internal/upload"
)

// Screen texts
const (
	UploadTitle    = "Upload WhatsApp Chat File"
	UploadPrompt   = "Drag and drop your .txt file here, or type its path and press enter"
	DragPrompt     = "Release to analyze"
	AnalyzingText  = "Analyzing chat file..."
	SummaryHeading = "Analytics Summary"
	ChartHeading   = "Activity Chart"
	busyNotice     = "An analysis is already running"
)

var exportSteps = []string{
	"Open the WhatsApp group chat",
	"Tap the three dots menu (⋮)",
	`Select "More" → "Export chat"`,
	`Choose "Without media"`,
}

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Controller is what the screen needs from the analysis controller
type Controller interface {
	surface.Starter
	Wait(ctx context.Context) error
	Reset()
}

// Options configures the upload screen
type Options struct {
	Theme      Theme
	ChartWidth int
	// InitialPath is submitted as a selection when the screen starts
	InitialPath string
}

// Model is the interactive upload screen
type Model struct {
	ctx     context.Context
	ctrl    Controller
	surface *surface.Surface
	log     *logger.Logger
	styles  *Styles
	opts    Options

	state  analysis.RequestState
	input  []rune
	notice string

	width        int
	spinnerFrame int
	quitting     bool
}

// NewModel creates the upload screen. ctx bounds requests started from it.
func NewModel(ctx context.Context, ctrl Controller, log *logger.Logger, opts Options) *Model {
	if log == nil {
		log = logger.Discard()
	}
	if opts.Theme.Name == "" {
		opts.Theme = DefaultTheme
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = config.DefaultConfig().UI.ChartWidth
	}

	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		surface: surface.New(ctrl, log),
		log:     log.WithComponent("ui"),
		styles:  NewStyles(opts.Theme),
		opts:    opts,
		state:   ctrl.State(),
	}
}

// Init starts the spinner and submits the initial path, if any
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.opts.InitialPath != "" {
		cmds = append(cmds, func() tea.Msg {
			return m.selectionMsg(m.opts.InitialPath)
		})
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerChars)
		return m, tick()
	case stateMsg:
		m.state = msg.state
		return m, nil
	case DropMsg:
		return m, m.handleEvent(msg.Event)
	case noticeMsg:
		m.notice = string(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

// noticeMsg reports a problem that happened before any event reached the surface
type noticeMsg string

// selectionMsg turns typed or pasted text into a Select or Drop message
func (m *Model) selectionMsg(text string) tea.Msg {
	candidates, err := candidatesFromText(text)
	if err != nil {
		return noticeMsg(err.Error())
	}
	return DropMsg{Event: surface.Event{Kind: surface.Select, Files: candidates}}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		return m.handlePaste(string(msg.Runes))
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		return m.handleEnter()
	case tea.KeyEsc:
		return m.handleEscape()
	case tea.KeyBackspace:
		if len(m.input) > 0 && !m.surface.Disabled() {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeySpace:
		return m.appendInput([]rune{' '})
	case tea.KeyRunes:
		if string(msg.Runes) == "q" && len(m.input) == 0 {
			m.quitting = true
			return m, tea.Quit
		}
		return m.appendInput(msg.Runes)
	}
	return m, nil
}

// handlePaste treats pasted paths as a drop. Other text goes to the input.
func (m *Model) handlePaste(text string) (tea.Model, tea.Cmd) {
	if !surface.LooksLikeDrop(text) {
		return m.appendInput([]rune(text))
	}

	if _, err := m.surface.Handle(m.ctx, surface.Event{Kind: surface.DragEnter}); err != nil {
		m.log.Debug("drag enter rejected: %v", err)
	}

	candidates, err := candidatesFromText(text)
	if err != nil {
		m.notice = err.Error()
		_, _ = m.surface.Handle(m.ctx, surface.Event{Kind: surface.DragLeave})
		return m, nil
	}
	return m, m.handleEvent(surface.Event{Kind: surface.Drop, Files: candidates})
}

func (m *Model) appendInput(runes []rune) (tea.Model, tea.Cmd) {
	if m.surface.Disabled() {
		return m, nil
	}
	m.input = append(m.input, runes...)
	return m, nil
}

func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(string(m.input))
	if text == "" || m.surface.Disabled() {
		return m, nil
	}

	msg := m.selectionMsg(text)
	if notice, ok := msg.(noticeMsg); ok {
		m.notice = string(notice)
		return m, nil
	}
	return m, m.handleEvent(msg.(DropMsg).Event)
}

// handleEscape clears the input, then the last result
func (m *Model) handleEscape() (tea.Model, tea.Cmd) {
	if len(m.input) > 0 {
		m.input = nil
		return m, nil
	}
	if !analysis.IsPending(m.state) {
		m.ctrl.Reset()
		m.state = m.ctrl.State()
		m.notice = ""
	}
	return m, nil
}

// handleEvent forwards an event to the surface and, when a request starts,
// waits for its result off the update loop.
func (m *Model) handleEvent(ev surface.Event) tea.Cmd {
	outcome, err := m.surface.Handle(m.ctx, ev)
	switch {
	case errors.Is(err, surface.ErrBusy):
		m.notice = busyNotice
		return nil
	case err != nil:
		m.notice = err.Error()
		return nil
	}

	if !outcome.Started {
		return nil
	}

	m.notice = ""
	m.input = nil
	m.state = m.ctrl.State()
	m.log.Info("analysis started for %s", outcome.FileName)
	return waitForResult(m.ctx, m.ctrl)
}

// candidatesFromText resolves pasted or typed text into upload candidates.
// Paths that are not readable files are skipped; the first error is only
// returned when nothing resolves.
func candidatesFromText(text string) ([]upload.Candidate, error) {
	paths, err := surface.ParseDroppedPaths(text)
	if err != nil {
		return nil, fmt.Errorf("cannot read dropped paths: %w", err)
	}

	var firstErr error
	candidates := make([]upload.Candidate, 0, len(paths))
	for _, path := range paths {
		candidate, err := upload.CandidateFromPath(config.ExpandPath(path))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return candidates, nil
}

// View renders the screen
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.styles.Title.Render(emoji.GetEmoji("message") + " ChatLens"),
		m.renderUpload(),
	}

	switch state := m.state.(type) {
	case analysis.Failed:
		sections = append(sections, m.styles.ErrorBox.Render(state.Message))
	case analysis.Succeeded:
		sections = append(sections, m.renderResults(state))
	}

	if _, ok := m.state.(analysis.Succeeded); !ok {
		sections = append(sections, m.renderExportHint())
	}

	sections = append(sections, m.styles.Muted.Render(m.renderHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderUpload() string {
	lines := []string{m.styles.Header.Render(emoji.GetEmoji("upload") + " " + UploadTitle), ""}

	switch {
	case m.surface.Disabled():
		spinner := m.styles.Spinner.Render(spinnerChars[m.spinnerFrame])
		lines = append(lines, spinner+" "+AnalyzingText)
	case m.surface.DragActive():
		lines = append(lines, m.styles.Success.Render(DragPrompt))
	default:
		lines = append(lines, m.styles.Body.Render(UploadPrompt))
		lines = append(lines, "> "+string(m.input)+"█")
	}

	if name := m.surface.SelectedFileName(); name != "" {
		lines = append(lines, "", m.styles.Muted.Render("Selected: "+name))
	}
	if m.notice != "" {
		lines = append(lines, "", m.styles.Notice.Render(emoji.GetEmoji("warning")+" "+m.notice))
	}

	box := m.styles.DropBox
	if m.surface.DragActive() {
		box = m.styles.DragBox
	}
	return box.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderResults(state analysis.Succeeded) string {
	result := state.Analytics
	if result == nil {
		return ""
	}

	header := components.NewSummaryBox(emoji.GetEmoji("file")+" "+state.FileName, 0)
	if state.TotalMessages > 0 {
		header.AddKeyValue("Messages", fmt.Sprintf("%d", state.TotalMessages))
	}
	if trend := components.ActiveTrend(result.DailyData).Render(); trend != "" {
		header.AddKeyValue("Active trend", trend)
	}

	columns := 4
	if m.width > 0 && m.width < 120 {
		columns = 2
	}
	cards := components.NewSummaryCards(result.Summary)
	cards.SetColumns(columns)

	sections := []string{
		header.Render(),
		m.styles.Header.Render(emoji.GetEmoji("statistics") + " " + SummaryHeading),
		cards.Render(),
	}

	if chart := components.NewActivityChart(result.DailyData, m.opts.ChartWidth).Render(); chart != "" {
		sections = append(sections, m.styles.Header.Render(emoji.GetEmoji("chart")+" "+ChartHeading), chart)
	}

	sections = append(sections, components.NewUserGrid(result.ActiveUsers, columns).Render())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderExportHint() string {
	lines := []string{emoji.GetEmoji("hint") + " To export a WhatsApp chat:"}
	for i, step := range exportSteps {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, step))
	}
	return m.styles.HintBox.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelp() string {
	if len(m.input) > 0 {
		return "enter: analyze • esc: clear • ctrl+c: quit"
	}
	if _, ok := m.state.(analysis.Idle); ok {
		return "type or paste a path • q: quit"
	}
	return "esc: clear result • q: quit"
}

// Run shows the upload screen until the user quits. Events sent on drops
// are delivered as if they happened on the screen.
func Run(ctx context.Context, ctrl Controller, log *logger.Logger, opts Options, drops <-chan surface.Event) error {
	model := NewModel(ctx, ctrl, log, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if drops != nil {
		go func() {
			for {
				select {
				case ev, ok := <-drops:
					if !ok {
						return
					}
					p.Send(DropMsg{Event: ev})
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
