// Package menu implements the interactive profile chooser shown when
// napclean runs without a subcommand.
package menu

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	runewidth "github.com/mattn/go-runewidth"

	"napclean/internal/target"
	"napclean/internal/ui"
)

// Menu drives the interactive selection and confirmation prompts.
type Menu struct {
	printer *ui.Printer
}

// NewMenu creates a menu manager.
func NewMenu(printer *ui.Printer) *Menu {
	if printer == nil {
		printer = ui.NewPrinter()
	}
	return &Menu{printer: printer}
}

// SelectProfile shows the banner and lets the user pick a removal profile.
func (m *Menu) SelectProfile(cfg *target.Config) (*target.Profile, error) {
	m.printer.PrintBanner()

	items, names := formatProfileItems(cfg.Profiles)

	prompt := promptui.Select{
		Label: "Select a removal profile",
		Items: items,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}:",
			Active:   "▶ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✅ {{ . | green }}",
		},
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(names) {
		return nil, errors.New("invalid selection")
	}

	profile, ok := cfg.Profile(names[index])
	if !ok {
		return nil, errors.New("selected profile not found")
	}
	return profile, nil
}

// ConfirmRemoval asks for explicit consent before mutating the system.
// A declined prompt returns false without an error.
func (m *Menu) ConfirmRemoval(profile *target.Profile) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Remove %d packages for profile %q", len(profile.Packages), profile.Name),
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func formatProfileItems(profiles []target.Profile) ([]string, []string) {
	width := 0
	for _, p := range profiles {
		if w := runewidth.StringWidth(p.Name); w > width {
			width = w
		}
	}

	items := make([]string, 0, len(profiles))
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		padding := width - runewidth.StringWidth(p.Name)
		items = append(items, fmt.Sprintf("%s%*s  %s", p.Name, padding, "", p.Description))
		names = append(names, p.Name)
	}
	return items, names
}
