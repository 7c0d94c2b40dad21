// Package renderer turns the accounting results into markdown reports.
//
// Each report is a view struct (plain data, pre-formatted with the exact
// decimal types) rendered through a main template and a set of named
// partials embedded in the package.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderPnL renders the PnL struct to a markdown string.
func RenderPnL(p *PnL) string {
	partials := map[string]string{
		"pnl_title":    "pnl_title.md",
		"pnl_position": "pnl_position.md",
		"pnl_gains":    "pnl_gains.md",
	}
	return renderTemplate("pnl", "pnl.md", partials, p)
}

// RenderTransfers renders the Transfers struct to a markdown string.
func RenderTransfers(t *Transfers) string {
	partials := map[string]string{
		"transfers_title":   "transfers_title.md",
		"transfers_summary": "transfers_summary.md",
	}
	return renderTemplate("transfers", "transfers.md", partials, t)
}

// RenderReconciliation renders the Reconciliation struct to a markdown string.
func RenderReconciliation(r *Reconciliation) string {
	partials := map[string]string{
		"reconciliation_title":  "reconciliation_title.md",
		"reconciliation_assets": "reconciliation_assets.md",
		"reconciliation_totals": "reconciliation_totals.md",
	}
	return renderTemplate("reconciliation", "reconciliation.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
