package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/schemaviz/schemaviz/pkg/er"
	"github.com/schemaviz/schemaviz/pkg/er/parse"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command for browsing a parsed model.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse the entities of an erDiagram file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			diagram, err := parse.Parse(source)
			if err != nil {
				printError("Parse failed: %v", err)
				return err
			}
			if diagram.Entities().Len() == 0 {
				printInfo("No entities in %s", args[0])
				return nil
			}

			model := newEntityListModel(diagram)
			p := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// entityListModel - Interactive entity browser
// =============================================================================

// entityRow is one entity with its precomputed relationship degree.
type entityRow struct {
	entity   *er.Entity
	relCount int
}

// entityListModel is the bubbletea model for the entity browser. It has two
// views: the entity table, and a per-entity attribute detail.
type entityListModel struct {
	diagram *er.Diagram
	rows    []entityRow
	cursor  int
	height  int
	offset  int
	detail  bool
}

func newEntityListModel(d *er.Diagram) entityListModel {
	degree := map[string]int{}
	for _, rel := range d.Relationships() {
		degree[rel.EntityA]++
		degree[rel.EntityB]++
	}

	rows := make([]entityRow, 0, d.Entities().Len())
	for _, name := range d.Entities().Keys() {
		e, _ := d.Entities().Get(name)
		rows = append(rows, entityRow{entity: e, relCount: degree[name]})
	}

	return entityListModel{
		diagram: d,
		rows:    rows,
		height:  15,
	}
}

func (m entityListModel) Init() tea.Cmd {
	return nil
}

func (m entityListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if !m.detail && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if !m.detail && m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.detail = !m.detail
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m entityListModel) View() string {
	if m.detail {
		return m.detailView()
	}
	return m.listView()
}

func (m entityListModel) listView() string {
	var b strings.Builder

	title := "Entities"
	if m.diagram.Title() != "" {
		title = m.diagram.Title()
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ attributes  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		alias := r.entity.Alias
		if alias == "" {
			alias = "—"
		}

		rows = append(rows, []string{
			cursor,
			r.entity.Name,
			alias,
			strconv.Itoa(r.entity.Attributes.Len()),
			strconv.Itoa(r.relCount),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Entity", "Alias", "Attributes", "Relationships").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			if actualIdx == m.cursor {
				return listSelectedStyle
			}
			if col >= 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}

func (m entityListModel) detailView() string {
	var b strings.Builder

	e := m.rows[m.cursor].entity

	b.WriteString(StyleTitle.Render(e.Label()))
	if e.Alias != "" {
		b.WriteString(listDimStyle.Render("  (" + e.Name + ")"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	if e.Attributes.Len() == 0 {
		b.WriteString(listDimStyle.Render("  no attributes"))
		b.WriteString("\n")
	}
	for _, name := range e.Attributes.Keys() {
		attr, _ := e.Attributes.Get(name)

		keys := ""
		if len(attr.Keys) > 0 {
			keys = strings.Join(attr.Keys, ",")
		}
		line := fmt.Sprintf("  %-20s %-12s %s",
			attr.Name, listDimStyle.Render(attr.Type), StyleWarning.Render(keys))
		b.WriteString(listNormalStyle.Render(line))
		b.WriteString("\n")
	}

	rels := m.relationshipLines(e.Name)
	if len(rels) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
		b.WriteString("\n")
		for _, line := range rels {
			b.WriteString(listDimStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// relationshipLines formats every relationship touching the named entity.
func (m entityListModel) relationshipLines(name string) []string {
	var lines []string
	for _, rel := range m.diagram.Relationships() {
		if rel.EntityA != name && rel.EntityB != name {
			continue
		}
		role := rel.Role
		if role == "" {
			role = "relates to"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s (%s / %s)",
			rel.EntityA, role, rel.EntityB,
			rel.Spec.CardA.String(), rel.Spec.CardB.String()))
	}
	return lines
}
