// Package tui is the interactive form that collects a run request and runs the pipeline.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/stock-tracker/tracker/internal/chart"
	"github.com/stock-tracker/tracker/internal/logger"
	"github.com/stock-tracker/tracker/internal/pipeline"
	"github.com/stock-tracker/tracker/pkg/marketdata/provider"
)

// Application states.
const (
	StateWelcome = iota
	StateForm
	StateBrowse
)

// Welcome page buttons.
const (
	welcomeStart = iota
	welcomeExit
)

// Config wires the model to a data source.
type Config struct {
	Provider provider.Provider
	Renderer chart.Renderer
	Logger   *logger.Logger
	// Options are the pipeline options of every run; the model sets the callbacks.
	Options pipeline.Options
	// Defaults prefill the form.
	Defaults pipeline.RunRequest
}

// Model is the Bubble Tea model of the tracker window.
type Model struct {
	config Config
	logger *logger.Logger

	state         int
	welcomeFocus  int
	focus         int
	inputs        []textinput.Model
	picker        filepicker.Model
	spinner       spinner.Model
	progressBar   progress.Model
	percent       float64
	step          string
	progressLabel string
	messageLabel  string
	info          strings.Builder
	err           error
	report        *pipeline.RunReport
	width         int

	running bool
	cancel  context.CancelFunc
	events  chan tea.Msg
}

// NewModel creates a Model on the welcome page.
func NewModel(config Config) *Model {
	log := config.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	m := &Model{
		config:      config,
		logger:      log.Named("tui"),
		state:       StateWelcome,
		inputs:      NewFieldInputs(),
		picker:      NewFolderPicker(),
		spinner:     NewSpinner(),
		progressBar: NewProgressBar(),
	}

	m.inputs[fieldSymbols].SetValue(config.Defaults.Symbols)
	m.inputs[fieldStart].SetValue(config.Defaults.StartDate)
	m.inputs[fieldEnd].SetValue(config.Defaults.EndDate)
	m.inputs[fieldOutput].SetValue(config.Defaults.OutputFolder)

	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Request returns the run request currently typed into the form.
func (m *Model) Request() pipeline.RunRequest {
	return pipeline.RunRequest{
		Symbols:      m.inputs[fieldSymbols].Value(),
		StartDate:    m.inputs[fieldStart].Value(),
		EndDate:      m.inputs[fieldEnd].Value(),
		OutputFolder: m.inputs[fieldOutput].Value(),
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopRun()

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressMsg:
		if msg.Total > 0 {
			m.percent = msg.Current / msg.Total
		}

		m.step = msg.Step

		return m, m.waitForEvent()

	case StatusMsg:
		m.progressLabel = msg.Progress
		m.messageLabel = msg.Message

		return m, m.waitForEvent()

	case InfoMsg:
		m.info.WriteString(msg.Text)

		return m, m.waitForEvent()

	case RunFinishedMsg:
		return m.finishRun(msg)
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcome(msg)
	case StateForm:
		return m.updateForm(msg)
	case StateBrowse:
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m *Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "right", "l", "shift+tab", "left", "h":
		m.welcomeFocus = 1 - m.welcomeFocus
	case "enter", " ":
		if m.welcomeFocus == welcomeExit {
			return m, tea.Quit
		}

		m.state = StateForm

		return m, m.setFocus(fieldSymbols)
	}

	return m, nil
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			if m.running {
				m.stopRun()

				return m, nil
			}

			m.state = StateWelcome

			return m, nil
		case "tab", "down":
			return m, m.setFocus((m.focus + 1) % focusCount)
		case "shift+tab", "up":
			return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
		case "enter":
			switch m.focus {
			case focusBrowse:
				return m, m.openPicker()
			case focusRun:
				return m, m.startRun()
			default:
				return m, m.setFocus(m.focus + 1)
			}
		}
	}

	if m.focus >= focusBrowse {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m *Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "q":
			m.state = StateForm

			return m, m.setFocus(focusBrowse)
		case "s":
			return m, m.chooseFolder(m.picker.CurrentDirectory)
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, m.chooseFolder(path)
	}

	return m, cmd
}

// setFocus moves the form focus to index and focuses its input, if any.
func (m *Model) setFocus(index int) tea.Cmd {
	m.focus = index

	var cmd tea.Cmd

	for i := range m.inputs {
		if i == index {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}

	return cmd
}

func (m *Model) openPicker() tea.Cmd {
	m.picker = NewFolderPicker()

	if dir := strings.TrimSpace(m.inputs[fieldOutput].Value()); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			m.picker.CurrentDirectory = dir
		}
	}

	m.state = StateBrowse

	return m.picker.Init()
}

func (m *Model) chooseFolder(path string) tea.Cmd {
	m.inputs[fieldOutput].SetValue(path)
	m.state = StateForm

	return m.setFocus(focusRun)
}

// startRun validates the form and runs the pipeline in the background.
// Events flow back through m.events until RunFinishedMsg.
func (m *Model) startRun() tea.Cmd {
	if m.running {
		return nil
	}

	req := m.Request()

	m.err = nil
	m.report = nil
	m.messageLabel = ""
	m.progressLabel = ""
	m.percent = 0
	m.step = ""
	m.info.Reset()

	if err := req.Validate(); err != nil {
		m.err = err

		return nil
	}

	events := make(chan tea.Msg, 64)

	options := m.config.Options
	options.InfoOutput = infoWriter{events: events}
	options.OnProgress = func(current, total float64, step string) {
		events <- ProgressMsg{Current: current, Total: total, Step: step}
	}
	options.OnStatus = func(progress, message string) {
		events <- StatusMsg{Progress: progress, Message: message}
	}

	p, err := pipeline.New(m.config.Provider, m.config.Renderer, m.config.Logger, options)
	if err != nil {
		m.err = err

		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = events
	m.running = true

	m.logger.Info("starting run", zap.String("symbols", req.Symbols), zap.String("output", req.OutputFolder))

	go func() {
		report, err := p.Run(ctx, req)
		events <- RunFinishedMsg{Report: report, Err: err}
	}()

	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) finishRun(msg RunFinishedMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}

	m.running = false
	m.cancel = nil
	m.events = nil
	m.report = &msg.Report
	m.err = msg.Err
	m.progressLabel = ""

	if msg.Err != nil {
		m.logger.Warn("run finished with errors", zap.Error(msg.Err))
	} else {
		m.percent = 1
	}

	return m, nil
}

func (m *Model) stopRun() {
	if m.cancel != nil {
		m.logger.Info("cancelling run")
		m.cancel()
	}
}

// infoWriter forwards the info report to the model.
type infoWriter struct {
	events chan<- tea.Msg
}

func (w infoWriter) Write(p []byte) (int, error) {
	w.events <- InfoMsg{Text: string(p)}

	return len(p), nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(AppTitle))
	s.WriteString("\n\n")

	switch m.state {
	case StateWelcome:
		s.WriteString(WelcomeText)
		s.WriteString("\n\n")
		s.WriteString(renderButton("Start", m.welcomeFocus == welcomeStart))
		s.WriteString(" ")
		s.WriteString(renderButton("Exit", m.welcomeFocus == welcomeExit))
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Tab to switch, Enter to select, q to quit"))

	case StateForm:
		m.viewForm(&s)

	case StateBrowse:
		s.WriteString(LabelStyle.Render("Select output folder"))
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(m.picker.CurrentDirectory))
		s.WriteString("\n\n")
		s.WriteString(m.picker.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Enter to select a folder, s to use the current folder, Esc to cancel"))
	}

	return s.String()
}

func (m *Model) viewForm(s *strings.Builder) {
	for i, label := range fieldLabels {
		s.WriteString(LabelStyle.Render(label))
		s.WriteString("\n")
		s.WriteString(m.inputs[i].View())

		if i == fieldOutput {
			s.WriteString(" ")
			s.WriteString(renderButton("Browse", m.focus == focusBrowse))
		}

		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(renderButton("Run", m.focus == focusRun))
	s.WriteString("\n\n")

	if m.running {
		s.WriteString(m.spinner.View())
		s.WriteString(" ")
		s.WriteString(m.progressLabel)
		s.WriteString("\n")
		s.WriteString(m.progressBar.ViewAs(m.percent))
		s.WriteString(" ")
		s.WriteString(HelpStyle.Render(m.step))
		s.WriteString("\n")
	}

	if m.messageLabel != "" {
		s.WriteString(SuccessStyle.Render(m.messageLabel))
		s.WriteString("\n")
	}

	if m.report != nil && len(m.report.Symbols) > 0 {
		s.WriteString(HelpStyle.Render(fmt.Sprintf("written: %d  skipped: %d  failed: %d",
			len(m.report.Written()), len(m.report.Skipped()), len(m.report.Failed()))))
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	if m.info.Len() > 0 {
		s.WriteString("\n")
		s.WriteString(m.info.String())
	}

	s.WriteString("\n")

	if m.running {
		s.WriteString(HelpStyle.Render("Esc: cancel run | ctrl+c: quit"))
	} else {
		s.WriteString(HelpStyle.Render("Tab/Shift+Tab: move | Enter: select | Esc: back | ctrl+c: quit"))
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, config Config) error {
	m := NewModel(config)

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		m.stopRun()

		return fmt.Errorf("tui: %w", err)
	}

	return nil
}
