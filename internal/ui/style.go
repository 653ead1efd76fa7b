package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored schedsim banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	ticks := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------------+")
	ticks.Fprintln(w, "   | |P1|P1|P2|P3|P3|P3|P1|P2|    |")
	brand.Fprintln(w, "   |    S  C  H  E  D  S  I  M    |")
	ticks.Fprintln(w, "   | 0  1  2  3  4  5  6  7  8    |")
	frame.Fprintln(w, "   +------------------------------+")
	tag.Fprintln(w, "   CPU scheduling policy simulator")
	fmt.Fprintln(w)
}

// processColors is a palette of distinct bold colors for telling processes apart.
var processColors = []*color.Color{
	color.New(color.Bold, color.FgMagenta),
	color.New(color.Bold, color.FgCyan),
	color.New(color.Bold, color.FgYellow),
	color.New(color.Bold, color.FgGreen),
	color.New(color.Bold, color.FgHiBlue),
	color.New(color.Bold, color.FgHiRed),
}

// blockColors mirror processColors as backgrounds for Gantt bars.
var blockColors = []*color.Color{
	color.New(color.BgMagenta, color.FgBlack),
	color.New(color.BgCyan, color.FgBlack),
	color.New(color.BgYellow, color.FgBlack),
	color.New(color.BgGreen, color.FgBlack),
	color.New(color.BgHiBlue, color.FgBlack),
	color.New(color.BgHiRed, color.FgBlack),
}

func colorIndex(pid int) int {
	if pid < 0 {
		pid = -pid
	}
	return pid % len(processColors)
}

// ProcessPrefix returns a colored [P<id>] prefix. A given pid always gets the same color.
func ProcessPrefix(pid int) string {
	return Dim("[") + processColors[colorIndex(pid)].Sprintf("P%d", pid) + Dim("]")
}

// Block renders a Gantt bar of width cells labelled with the process id.
func Block(pid, width int) string {
	label := fmt.Sprintf("P%d", pid)
	if width < len(label) {
		return blockColors[colorIndex(pid)].Sprint(strings.Repeat(" ", max(width, 0)))
	}
	left := (width - len(label)) / 2
	cell := strings.Repeat(" ", left) + label + strings.Repeat(" ", width-len(label)-left)
	return blockColors[colorIndex(pid)].Sprint(cell)
}

// Idle renders an idle gap of width cells.
func Idle(width int) string {
	return Dim(strings.Repeat("·", max(width, 0)))
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return Green("✓")
	case "running":
		return Cyan("●")
	case "failed":
		return Red("✗")
	case "cancelled":
		return Dim("⊘")
	default:
		return Dim("◌")
	}
}
