package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cpcf/bootstrapp/engine"
	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/spec"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"})
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "250"})
)

var describeCmd = &cobra.Command{
	Use:   "describe <template-bundle>",
	Short: "Show what a template bundle provides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := engine.OpenBundle(args[0])
		if err != nil {
			return err
		}
		s, err := spec.Load(b.SpecPath())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderSummary(s))

		if path, ok := b.DescriptionPath(); ok {
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrIO, "reading %s", path)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, renderMarkdown(string(data)))
		}
		return nil
	},
}

func renderSummary(s *spec.Spec) string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render(s.ID))
	sb.WriteByte('\n')
	if s.Description != "" {
		sb.WriteString(s.Description)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	writeField(&sb, "Type", string(s.Type))
	writeField(&sb, "Version", fmt.Sprintf("%s (specification %s)", s.TemplateVersion, s.SpecificationVersion))
	writeField(&sb, "Output", s.OutputDirectoryName)
	if s.ProjectSpecification != "" {
		writeField(&sb, "Project", s.ProjectSpecification)
	}

	if len(s.Parameters) > 0 {
		sb.WriteByte('\n')
		sb.WriteString(sectionStyle.Render("Parameters"))
		sb.WriteByte('\n')
		width := 0
		for _, p := range s.Parameters {
			width = max(width, len(p.ID))
		}
		for _, p := range s.Parameters {
			sb.WriteString(fmt.Sprintf("  %-*s  %s\n", width, p.ID, describeParameter(&p)))
		}
	}

	if len(s.Packages) > 0 {
		sb.WriteByte('\n')
		sb.WriteString(sectionStyle.Render("Packages"))
		sb.WriteByte('\n')
		for _, pkg := range s.Packages {
			line := pkg.Name
			if pkg.Version != "" {
				line += " " + pkg.Version
			}
			if pkg.URL != "" {
				line += "  " + labelStyle.Render(pkg.URL)
			}
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render(fmt.Sprintf("%-8s", label)), value))
}

func describeParameter(p *spec.Parameter) string {
	parts := []string{string(p.Kind)}
	if p.HasDefault() {
		parts = append(parts, "default "+defaultText(p))
	} else {
		parts = append(parts, "required")
	}
	if len(p.Options) > 0 {
		parts = append(parts, "("+strings.Join(p.Options, ", ")+")")
	}
	if p.ValidationRegex != "" {
		parts = append(parts, "matches "+p.ValidationRegex)
	}
	if p.DependsOn != "" {
		parts = append(parts, "needs "+p.DependsOn)
	}
	return strings.Join(parts, "  ")
}

func defaultText(p *spec.Parameter) string {
	switch p.Kind {
	case spec.KindOption:
		if idx, ok := p.DefaultOptionIndex(); ok && idx >= 0 && idx < len(p.Options) {
			return p.Options[idx]
		}
	case spec.KindString:
		if text, ok := p.DefaultString(); ok {
			if text == "" {
				return `""`
			}
			return text
		}
	}
	return fmt.Sprintf("%v", p.Default)
}

// renderMarkdown pretty-prints the bundle description. Any renderer
// trouble falls back to the raw markdown.
func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
