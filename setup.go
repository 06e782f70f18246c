package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"voicetyper/config"
	"voicetyper/models"
)

// firstRunSetup runs once when no config file exists: pick a model, fetch it
// while the user watches, and persist the choice. Without a terminal it just
// writes defaults and lets the background downloader handle the rest.
func firstRunSetup(cfgPath, modelDir string) error {
	cfg := config.Default()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cfg.Save(cfgPath)
	}

	id, err := pickModel()
	if err != nil {
		return err
	}
	cfg.Model = id
	if err := cfg.Save(cfgPath); err != nil {
		return err
	}

	if models.IsDownloaded(modelDir, id) {
		return nil
	}
	desc, _ := models.Lookup(id)
	fmt.Printf("Downloading %s (%s)...\n", desc.DisplayName, desc.SizeHint)
	transport := models.NewHTTPTransport(modelDir)
	_, err = transport.Fetch(id, func(frac float64) {
		fmt.Printf("\r  %3.0f%%", frac*100)
	})
	if err != nil {
		fmt.Println()
		return fmt.Errorf("download %s: %w", id, err)
	}
	fmt.Print("\r  done \n")
	return nil
}

var (
	setupTitleStyle  = lipgloss.NewStyle().Bold(true)
	setupCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	setupDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type setupModel struct {
	items   []models.Descriptor
	cursor  int
	chosen  string
	aborted bool
}

func pickModel() (string, error) {
	m := setupModel{items: models.Catalog()}
	for i, d := range m.items {
		if d.ID == models.DefaultID {
			m.cursor = i
		}
	}
	res, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", fmt.Errorf("model picker: %w", err)
	}
	return chosenOrDefault(res.(setupModel)), nil
}

// chosenOrDefault maps an aborted or empty selection to the default model.
func chosenOrDefault(m setupModel) string {
	if m.aborted || m.chosen == "" {
		return models.DefaultID
	}
	return m.chosen
}

func (m setupModel) Init() tea.Cmd { return nil }

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.items[m.cursor].ID
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m setupModel) View() string {
	s := setupTitleStyle.Render("Pick a speech model") + "\n\n"
	for i, d := range m.items {
		line := fmt.Sprintf("%s %s", d.DisplayName, setupDimStyle.Render(d.SizeHint))
		if i == m.cursor {
			s += setupCursorStyle.Render("> ") + line + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}
	s += "\n" + setupDimStyle.Render("↑/↓ move · enter select · q use default") + "\n"
	return s
}
