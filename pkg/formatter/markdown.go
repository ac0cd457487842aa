package formatter

import (
	"fmt"
	"path"
	"strings"

	"github.com/kataras/symbol-exporter/pkg/catalog"
	"github.com/kataras/symbol-exporter/pkg/exporter"
)

// ToMarkdown renders the catalog as a markdown document. Symbols are
// listed in catalog order and grouped by the first segment of their
// slash-separated name ("Icon/Home" belongs to "Icon"). When assets is not
// empty each symbol links to its image under imageDir.
func ToMarkdown(records []catalog.SymbolRecord, fileName string, assets []exporter.ExportedAsset, imageDir string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Symbols - %s\n\n", fileName))
	sb.WriteString(fmt.Sprintf("This document lists the %d symbol(s) found in the design file.\n\n", len(records)))

	if len(records) == 0 {
		return sb.String()
	}

	images := make(map[string]string, len(assets))
	for _, a := range assets {
		images[a.SymbolID] = a.FileName
	}

	groups, order := groupByPrefix(records)

	// Table of contents
	sb.WriteString("## Groups\n\n")
	for _, g := range order {
		sb.WriteString(fmt.Sprintf("- [%s](#%s) (%d)\n", g, toKebabCase(g), len(groups[g])))
	}
	sb.WriteString("\n")

	for _, g := range order {
		sb.WriteString(fmt.Sprintf("## %s\n\n", g))
		if len(images) > 0 {
			sb.WriteString("| # | Symbol | ID | Image |\n")
			sb.WriteString("|---|--------|----|-------|\n")
		} else {
			sb.WriteString("| # | Symbol | ID |\n")
			sb.WriteString("|---|--------|----|\n")
		}

		for _, r := range groups[g] {
			row := fmt.Sprintf("| %d | %s | `%s` |", r.SymbolIndex, escapeCell(r.Name), r.SymbolID)
			if len(images) > 0 {
				if file, ok := images[r.SymbolID]; ok {
					row += fmt.Sprintf(" ![%s](%s) |", escapeCell(r.Name), path.Join(imageDir, file))
				} else {
					row += " - |"
				}
			}
			sb.WriteString(row + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func groupByPrefix(records []catalog.SymbolRecord) (map[string][]catalog.SymbolRecord, []string) {
	groups := make(map[string][]catalog.SymbolRecord)
	var order []string
	for _, r := range records {
		g := r.Name
		if i := strings.Index(g, "/"); i >= 0 {
			g = g[:i]
		}
		g = strings.TrimSpace(g)
		if g == "" {
			g = "Ungrouped"
		}
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], r)
	}
	return groups, order
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// toKebabCase converts a string to kebab-case format (lowercase with hyphens).
// Special characters are removed, and spaces/underscores are replaced with hyphens.
func toKebabCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	// Remove any non-alphanumeric characters except hyphens
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}

	return result.String()
}
