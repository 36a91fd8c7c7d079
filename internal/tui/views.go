package tui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

// Window and page texts.
const (
	AppTitle     = "Stock Price Tracker"
	WelcomeText  = "Welcome to Stock Price Tracker"
	SymbolsLabel = "Stock symbols (comma-separated):"
	StartLabel   = "Start date (YYYY-MM-DD):"
	EndLabel     = "End date (YYYY-MM-DD):"
	OutputLabel  = "Output folder:"
)

// Form fields in focus order; the buttons follow them.
const (
	fieldSymbols = iota
	fieldStart
	fieldEnd
	fieldOutput
	focusBrowse
	focusRun
	focusCount
)

var fieldLabels = [...]string{SymbolsLabel, StartLabel, EndLabel, OutputLabel}

// NewFieldInputs creates the four form inputs with the symbols field focused.
func NewFieldInputs() []textinput.Model {
	placeholders := [...]string{"AAPL,MSFT,GOOG", "2024-01-01", "2024-06-30", "./output"}
	limits := [...]int{200, 10, 10, 256}

	inputs := make([]textinput.Model, len(placeholders))

	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 50
		ti.Prompt = "> "
		inputs[i] = ti
	}

	inputs[fieldSymbols].Focus()

	return inputs
}

// NewFolderPicker creates a picker that only selects directories.
func NewFolderPicker() filepicker.Model {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false

	return fp
}

func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return s
}

func NewProgressBar() progress.Model {
	return progress.New(progress.WithDefaultGradient(), progress.WithWidth(50))
}
