package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/thermogrid/pkg/classify"
)

// Terminal colors, ANSI 256.
var (
	colorAccent = lipgloss.Color("209") // warm orange, headings and spinners
	colorOK     = lipgloss.Color("35")
	colorCmd    = lipgloss.Color("75")
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)

	styleIconOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorLabel)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorCmd)
	styleKey         = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleFresh       = lipgloss.NewStyle().Foreground(colorLabel)
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconOK.Render("✓") + " " + fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render("›") + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints "N unit · cached" or "N unit · fresh".
func printStats(n int, unit string, cached bool) {
	status := styleFresh.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d %s · ", n, unit)) + status)
}

// swatch renders a two-cell block in c. Terminals have no alpha, so the
// opaque color is used.
func swatch(c classify.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(c.OpaqueHex())).Render("  ")
}

// printBand prints one legend row.
func printBand(c classify.Color, label string) {
	fmt.Println("  " + swatch(c) + " " + StyleDim.Render(c.Hex()) + "  " + StyleValue.Render(label))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
