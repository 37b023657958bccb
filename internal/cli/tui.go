package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kinship/pkg/category"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// WorkflowListModel - Interactive workflow selection
// =============================================================================

// WorkflowListModel is the bubbletea model for picking a focus workflow.
type WorkflowListModel struct {
	Workflows []lineage.Node
	Cursor    int
	Selected  *lineage.Node
	Height    int
	Offset    int

	text i18n.Localizer
}

// NewWorkflowListModel creates a new workflow list model.
func NewWorkflowListModel(workflows []lineage.Node, l i18n.Localizer) WorkflowListModel {
	if l == nil {
		l = i18n.Default()
	}
	return WorkflowListModel{
		Workflows: workflows,
		Height:    15,
		text:      l,
	}
}

func (m WorkflowListModel) Init() tea.Cmd {
	return nil
}

func (m WorkflowListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Workflows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Workflows) == 0 {
				return m, tea.Quit
			}
			wf := m.Workflows[m.Cursor]
			m.Selected = &wf
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m WorkflowListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Workflow"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Workflows))
	for i := m.Offset; i < end; i++ {
		wf := m.Workflows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		c := category.Classify(wf, category.Focus{})
		mark := swatch(c).Render("■")
		line := fmt.Sprintf("%s%s %-8s %-32s", cursor, mark, wf.ID, wf.Name)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("  " + listDimStyle.Render(c.Label(m.text)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Workflows)), len(m.Workflows))))

	return b.String()
}

// pickWorkflow lists the workflows matching search and returns the id the
// user picked, or "" if they quit.
func (c *CLI) pickWorkflow(ctx context.Context, runner *pipeline.Runner, project, search string) (string, error) {
	nodes, err := runner.Search(ctx, project, search)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("no workflows match %q in project %s", search, project)
	}

	l := i18n.ForLocale(c.Config.Render.Locale)
	final, err := tea.NewProgram(NewWorkflowListModel(nodes, l), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("workflow picker: %w", err)
	}
	if m, ok := final.(WorkflowListModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}
