package main

import (
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kalambet/newsetl/internal/format"
	"github.com/kalambet/newsetl/internal/record"
)

var previewHeaders = []string{"ID", "Nome", "Agência", "Conta", "Saldo", "Limite", "Qtd News", "Última News"}

// previewRows returns one row per user, ordered by id. batch is not reordered.
func previewRows(batch []*record.Record, wrapWidth int) [][]string {
	sorted := append([]*record.Record(nil), batch...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	rows := make([][]string, 0, len(sorted))
	for _, u := range sorted {
		last, _ := u.LastNews()
		rows = append(rows, []string{
			strconv.Itoa(u.ID),
			u.Name,
			u.Account.Agency,
			u.Account.Number,
			format.BRL(u.Account.Balance),
			format.BRL(u.Account.Limit),
			strconv.Itoa(len(u.News)),
			format.Wrap(format.Clean(last.Description), wrapWidth),
		})
	}
	return rows
}

// renderPreview draws the batch summary printed before enrichment.
func renderPreview(batch []*record.Record, wrapWidth int) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	money := cell.Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(previewHeaders...).
		Rows(previewRows(batch, wrapWidth)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				if noColor {
					return header
				}
				return header.Foreground(lipgloss.Color("#5B8DEF"))
			case col == 4 || col == 5:
				return money
			default:
				return cell
			}
		})
	if !noColor {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")))
	}
	return t.String()
}
