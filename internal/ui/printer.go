package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"napclean/internal/journal"
	"napclean/internal/uninstall"
)

// Printer renders rich terminal UI fragments used by the CLI.
type Printer struct {
	colorEnabled bool
	success      *color.Color
	info         *color.Color
	warn         *color.Color
	error        *color.Color
}

// NewPrinter constructs a Printer with colour automatically enabled for TTY outputs.
func NewPrinter() *Printer {
	enabled := supportsColor(os.Stdout) && os.Getenv("NO_COLOR") == ""

	p := &Printer{
		colorEnabled: enabled,
		success:      color.New(color.FgGreen, color.Bold),
		info:         color.New(color.FgBlue, color.Bold),
		warn:         color.New(color.FgYellow, color.Bold),
		error:        color.New(color.FgRed, color.Bold),
	}

	if !enabled {
		p.success.DisableColor()
		p.info.DisableColor()
		p.warn.DisableColor()
		p.error.DisableColor()
	}

	return p
}

// PrintBanner renders the application banner.
func (p *Printer) PrintBanner() {
	lines := []string{
		"=========================================================",
		"   _  __           _____ __                ",
		"  / |/ /__ ____  / ____/ /__ ___ ____  ___ ",
		" /    / _ `/ _ \\/ /__/ / -_) _ `/ _ \\ (_-< ",
		"/_/|_/\\_,_/ .__/\\___/_/\\__/\\_,_/_//_//___/ ",
		"         /_/                               ",
		"",
		"NapCat removal utility for Debian (amd64 && arm64)",
		"=========================================================",
	}

	for _, line := range lines {
		p.success.Println(line)
	}
}

// PrintSeparator prints a repeated character separator.
func (p *Printer) PrintSeparator(char string, length int) {
	if length <= 0 {
		return
	}
	fmt.Println(strings.Repeat(char, length))
}

// PrintOutcomes renders the per-package result of an uninstall run.
func (p *Printer) PrintOutcomes(result *uninstall.Result) {
	p.PrintSeparator("-", 50)
	p.success.Printf("Profile: %s\n", result.Profile)

	for _, outcome := range result.Outcomes {
		switch outcome.Action {
		case uninstall.ActionRemoved, uninstall.ActionPurged:
			fmt.Printf("  %s %s\n", p.success.Sprint("✓"), describeOutcome(outcome))
		case uninstall.ActionFailed:
			fmt.Printf("  %s %s\n", p.error.Sprint("✗"), describeOutcome(outcome))
		default:
			fmt.Printf("  %s %s\n", p.info.Sprint("-"), describeOutcome(outcome))
		}
	}

	p.PrintSeparator("-", 50)
}

func describeOutcome(outcome uninstall.Outcome) string {
	switch outcome.Action {
	case uninstall.ActionRemoved:
		return fmt.Sprintf("%s removed", outcome.Package)
	case uninstall.ActionPurged:
		return fmt.Sprintf("%s purged", outcome.Package)
	case uninstall.ActionFailed:
		return fmt.Sprintf("%s failed: %v", outcome.Package, outcome.Err)
	default:
		return fmt.Sprintf("%s %s, skipped", outcome.Package, outcome.State)
	}
}

// PrintStates renders the dry status view of a profile.
func (p *Printer) PrintStates(profile, arch string, states map[string]uninstall.InstallState, order []string) {
	p.PrintSeparator("-", 50)
	p.success.Printf("Profile: %s (%s)\n", profile, arch)

	width := 0
	for _, pkg := range order {
		if w := runewidth.StringWidth(pkg); w > width {
			width = w
		}
	}

	for _, pkg := range order {
		padded := pkg + strings.Repeat(" ", width-runewidth.StringWidth(pkg))
		switch states[pkg] {
		case uninstall.StateInstalled:
			fmt.Printf("  %s  %s\n", padded, p.warn.Sprint("installed"))
		case uninstall.StateAbsent:
			fmt.Printf("  %s  %s\n", padded, p.info.Sprint("not installed"))
		default:
			fmt.Printf("  %s  %s\n", padded, p.error.Sprint("unknown"))
		}
	}

	p.PrintSeparator("-", 50)
}

// PrintRuns renders journal entries as an aligned table.
func (p *Printer) PrintRuns(runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return
	}

	headers := []string{"ID", "PROFILE", "STARTED", "ACTIONS", "RESULT"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		result := "ok"
		if run.Failed {
			result = "failed"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", run.ID),
			run.Profile,
			run.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d", run.Actions),
			result,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cell + strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
		}
		fmt.Println("  " + strings.Join(parts, "  "))
	}

	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
}

func supportsColor(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
