package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kinship/pkg/category"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
)

// Terminal palette (ANSI 256). Category swatches use the graph colours
// instead, so the legend matches what the browser shows.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for ids, paths and counts.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell        = lipgloss.NewStyle().Padding(0, 1)
)

// stdout receives all user facing output.
var stdout io.Writer = os.Stdout

// statusKind selects the icon and colour of a status line.
type statusKind int

const (
	statusSuccess statusKind = iota
	statusError
	statusWarning
	statusInfo
)

var statusIcons = [...]struct {
	icon  string
	style lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorGreen)},
	statusError:   {"✗", lipgloss.NewStyle().Foreground(colorRed)},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorYellow)},
	statusInfo:    {"›", lipgloss.NewStyle().Foreground(colorGray)},
}

func printStatus(kind statusKind, format string, args ...any) {
	s := statusIcons[kind]
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = s.style.Render(msg)
	}
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printError(format string, args ...any)   { printStatus(statusError, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printStats(nodeCount, edgeCount int, cached bool) {
	fmt.Fprintln(stdout, formatStats(nodeCount, edgeCount, cached))
}

// formatStats renders "3 nodes · 2 edges · cached" with the cache state
// highlighted.
func formatStats(nodeCount, edgeCount int, cached bool) string {
	state := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		state = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	sep := StyleDim.Render(" · ")
	return "  " + StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)) +
		sep + StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)) +
		sep + state
}

func printLegend(counts map[category.Category]int, l i18n.Localizer) {
	fmt.Fprint(stdout, formatLegend(counts, l))
}

// formatLegend renders one swatch line per category in legend order,
// including categories with no nodes.
func formatLegend(counts map[category.Category]int, l i18n.Localizer) string {
	var b strings.Builder
	for _, c := range category.LegendOrder {
		b.WriteString("  ")
		b.WriteString(swatch(c).Render("■"))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(c.Label(l)))
		b.WriteString(" ")
		b.WriteString(StyleDim.Render(strconv.Itoa(counts[c])))
		b.WriteString("\n")
	}
	return b.String()
}

func swatch(c category.Category) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color()))
}

const (
	colID = iota
	colName
	colStatus
	colCrontab
)

// workflowTable renders search results. Status is the category a workflow
// gets when it is not the focus.
func workflowTable(nodes []lineage.Node, l i18n.Localizer) string {
	rows := make([][]string, len(nodes))
	cats := make([]category.Category, len(nodes))
	for i, n := range nodes {
		cats[i] = category.Classify(n, category.Focus{})
		rows[i] = []string{n.ID, n.Name, cats[i].Label(l), n.Crontab}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "Name", "Status", "Crontab").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row < 0:
				return styleHeader
			case col == colStatus && row < len(cats):
				return styleCell.Foreground(lipgloss.Color(cats[row].Color()))
			case col == colID || col == colCrontab:
				return styleCell.Foreground(colorDim)
			}
			return styleCell
		}).
		Render()
}
