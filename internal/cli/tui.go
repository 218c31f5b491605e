package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/pkg/errors"
	"github.com/matzehuels/thermogrid/pkg/feature"
	"github.com/matzehuels/thermogrid/pkg/highlight"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/session"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
)

// =============================================================================
// InspectModel - Interactive feature browser
// =============================================================================

// InspectModel browses the features of one layer and drives a highlight
// session from the keyboard: enter highlights the feature under the cursor,
// esc clears the highlight.
type InspectModel struct {
	Layer    *feature.Layer
	Session  *session.Session
	Features []*feature.Feature
	Cursor   int
	Height   int
	Offset   int
	Last     highlight.Transition

	ctx context.Context
}

// NewInspectModel creates an inspector over l driven by sess.
func NewInspectModel(ctx context.Context, l *feature.Layer, sess *session.Session) InspectModel {
	return InspectModel{
		Layer:    l,
		Session:  sess,
		Features: l.Features(),
		Height:   15,
		ctx:      ctx,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Features)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Features) == 0 {
				return m, nil
			}
			hit := pick.Hit{Feature: m.Features[m.Cursor], Layer: m.Layer}
			_ = m.Session.Do(func(s *session.Session) error {
				m.Last = s.Controller().Select(m.ctx, hit)
				return nil
			})
		case "esc":
			_ = m.Session.Do(func(s *session.Session) error {
				m.Last = s.Controller().Leave(m.ctx)
				return nil
			})
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Layer.Name))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(m.Layer.Meta.Attribute))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ highlight  esc clear  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Features))
	sheet := m.Session.Sheet()

	rows := make([][]string, 0, end-m.Offset)
	highlighted := make(map[int]bool)
	for i := m.Offset; i < end; i++ {
		f := m.Features[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		value := "—"
		if v, ok := f.Get(m.Layer.Meta.Attribute); ok {
			value = fmt.Sprintf("%.3f", v)
		}
		color, mark := "", ""
		if spec, ok := sheet.Style(f); ok {
			color = swatch(spec.Fill) + " " + spec.Fill.Hex()
			if spec.Highlighted {
				mark = "●"
				highlighted[i-m.Offset] = true
			}
		}
		rows = append(rows, []string{cursor, fmt.Sprint(f.ID()), value, color, mark})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("", "ID", "Value", "Fill", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case highlighted[row]:
				return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
			case m.Offset+row == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorValue).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorLabel)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s", m.Cursor+1, len(m.Features), m.Last.To)))

	return b.String()
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <layer>",
		Short: "Browse a layer's features and try highlighting interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, scene, err := c.loadScene()
			if err != nil {
				return err
			}
			l, ok := scene.Canvas.Layer(args[0])
			if !ok {
				return errors.New(errors.ErrCodeLayerNotFound, "layer %q not found", args[0])
			}

			sheet := session.NewSheet(scene.Canvas, scene.Styles)
			sess := session.New(pick.NewPicker(scene.Canvas, pick.AllLayers()), sheet, session.DefaultTTL)
			defer sess.Close(cmd.Context())

			_, err = tea.NewProgram(NewInspectModel(cmd.Context(), l, sess)).Run()
			return err
		},
	}
}
