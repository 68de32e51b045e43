package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpPage lists every key binding.
type HelpPage struct {
	keys KeyMap
	help help.Model
	back string
}

// NewHelpPage creates the help page.
func NewHelpPage() *HelpPage {
	h := help.New()
	h.ShowAll = true
	return &HelpPage{keys: DefaultKeyMap(), help: h, back: PageDashboard}
}

func (p *HelpPage) ID() string    { return PageHelp }
func (p *HelpPage) Init() tea.Cmd { return nil }

// Enter records the page to return to.
func (p *HelpPage) Enter(params interface{}) {
	if id, ok := params.(string); ok && id != "" {
		p.back = id
	}
}

func (p *HelpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.ForceQuit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Escape), key.Matches(msg, p.keys.Help), key.Matches(msg, p.keys.Quit):
			return nil, &PageNav{PageID: p.back}
		}
	}
	return nil, nil
}

func (p *HelpPage) View(width, height int) string {
	title := chartTitleStyle.Render("Keyboard shortcuts")
	body := p.help.View(p.keys)
	hint := helpStyle.Render("Click a legend row to filter, a table header to sort. esc to go back.")
	content := sectionStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
