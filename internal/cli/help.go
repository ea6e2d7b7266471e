package cli

import (
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/scopelight/internal/ui/pretty"
)

// helpStyles holds the lipgloss styles used by the help templates.
// scopelight's commands have no aliases, examples, or help topics, so
// only the usage, command list, and flag sections carry styles.
type helpStyles struct {
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Dim         lipgloss.Style
}

func newHelpStyles(colorEnabled bool) *helpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &helpStyles{
			Command:     plain,
			Heading:     plain,
			Subcommand:  plain,
			Flag:        plain,
			Description: plain,
			Dim:         plain,
		}
	}
	return &helpStyles{
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Description: lipgloss.NewStyle(),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// helpFormatter renders styled --help output for the command tree.
type helpFormatter struct {
	styles *helpStyles
}

func newHelpFormatter(colorMode string, writer io.Writer) *helpFormatter {
	return &helpFormatter{
		styles: newHelpStyles(pretty.IsColorEnabled(colorMode, writer)),
	}
}

func (h *helpFormatter) usageTemplate() string {
	return `{{ styleHeading "Usage:" }}
  {{if .Runnable}}{{ styleCommand .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ styleCommand .CommandPath }} [command]{{end}}

{{- if .HasAvailableSubCommands}}

{{ styleHeading "Available Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ styleSubcommand (rpad .Name .NamePadding) }} {{ styleDescription .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ styleHeading "Flags:" }}
{{ styleFlagsUsage .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ styleHeading "Global Flags:" }}
{{ styleFlagsUsage .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ styleCommand (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`
}

func (h *helpFormatter) helpTemplate() string {
	return `{{if or .Runnable .HasSubCommands}}{{ styleCommand .CommandPath }}

{{end}}{{with (or .Long .Short)}}{{ . | trimTrailingWhitespaces }}

{{end}}` + h.usageTemplate()
}

func (h *helpFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"styleCommand":            h.styles.Command.Render,
		"styleHeading":            h.styles.Heading.Render,
		"styleSubcommand":         h.styles.Subcommand.Render,
		"styleDescription":        h.styles.Description.Render,
		"styleFlagsUsage":         h.styleFlagsUsage,
		"rpad":                    rpad,
		"trimTrailingWhitespaces": trimTrailingWhitespaces,
	}
}

// styleFlagsUsage restyles pflag's FlagUsages block line by line.
func (h *helpFormatter) styleFlagsUsage(flags interface{ FlagUsages() string }) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}
	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = h.styleFlagLine(line)
	}
	return strings.Join(lines, "\n")
}

func (h *helpFormatter) styleFlagLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]

	flagPart, desc, ok := splitFlagUsage(trimmed)
	if !ok {
		return line
	}
	return indent + h.styleFlagTokens(flagPart) + "   " + h.styles.Description.Render(desc)
}

// splitFlagUsage cuts a pflag usage line at the first run of two or
// more spaces separating the flag spelling from its description.
func splitFlagUsage(line string) (flagPart, desc string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' {
			continue
		}
		j := i
		for j < len(line) && line[j] == ' ' {
			j++
		}
		if j-i >= 2 && j < len(line) {
			return strings.TrimRight(line[:i], " "), line[j:], true
		}
		i = j - 1
	}
	return "", "", false
}

// styleFlagTokens colors the flag spellings and dims the value-type
// hints ("string", "strings") pflag appends after them.
func (h *helpFormatter) styleFlagTokens(flagPart string) string {
	tokens := strings.Fields(flagPart)
	for i, token := range tokens {
		comma := strings.HasSuffix(token, ",")
		clean := strings.TrimSuffix(token, ",")
		if strings.HasPrefix(clean, "-") {
			tokens[i] = h.styles.Flag.Render(clean)
		} else {
			tokens[i] = h.styles.Dim.Render(clean)
		}
		if comma {
			tokens[i] += ","
		}
	}
	return strings.Join(tokens, " ")
}

// applyToCommand installs the styled usage and help renderers on cmd;
// cobra propagates them to every subcommand.
func (h *helpFormatter) applyToCommand(cmd *cobra.Command) {
	funcs := h.templateFuncs()

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		tmpl, err := template.New("usage").Funcs(funcs).Parse(h.usageTemplate())
		if err != nil {
			return err
		}
		return tmpl.Execute(command.OutOrStdout(), command)
	})

	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		tmpl, err := template.New("help").Funcs(funcs).Parse(h.helpTemplate())
		if err != nil {
			command.PrintErrln(err)
			return
		}
		if err := tmpl.Execute(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
