package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Terminal palette (ANSI 256).
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorAmber)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// statusKind selects the icon printed in front of a status line.
type statusKind int

const (
	statusOK statusKind = iota
	statusFailed
	statusWarn
	statusNote
)

var statusIcons = map[statusKind]string{
	statusOK:     lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	statusFailed: lipgloss.NewStyle().Foreground(colorRed).Render("✗"),
	statusWarn:   lipgloss.NewStyle().Foreground(colorAmber).Render("!"),
	statusNote:   lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

// stdout is where status lines go; tests swap it.
var stdout io.Writer = os.Stdout

func status(kind statusKind, msg string) {
	fmt.Fprintln(stdout, statusIcons[kind]+" "+msg)
}

func printSuccess(format string, args ...any) { status(statusOK, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { status(statusFailed, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { status(statusNote, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	status(statusWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// artifactTable formats written artifacts as a bordered table.
func artifactTable(written []writtenArtifact) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(written))
	for _, a := range written {
		status := "ok"
		if a.Placeholder {
			status = "placeholder"
		}
		rows = append(rows, []string{a.Format, a.Path, formatSize(a.Size), status})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Format", "File", "Size", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && written[row].Placeholder {
				return cellStyle.Foreground(colorAmber)
			}
			if col == 1 {
				return cellStyle.Foreground(colorWhite)
			}
			return cellStyle.Foreground(colorGray)
		})
	return t.Render()
}

// printArtifacts prints the artifact table.
func printArtifacts(written []writtenArtifact) {
	if len(written) == 0 {
		return
	}
	fmt.Fprintln(stdout, artifactTable(written))
}

// formatSize renders a byte count for humans.
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// statsLine summarizes a run: total and visible node counts and whether
// the result came from the cache.
func statsLine(nodeCount, visibleCount int, cached bool) string {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if visibleCount > 0 && visibleCount != nodeCount {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d visible", visibleCount)))
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGreen).Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGray).Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(nodeCount, visibleCount int, cached bool) {
	fmt.Fprintln(stdout, statsLine(nodeCount, visibleCount, cached))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }
