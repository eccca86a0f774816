package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/calboard/internal/config"
	"github.com/teemow/calboard/internal/resources"
	"github.com/teemow/calboard/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate the MCP reference (tools and resources)",
		Long: `Render the MCP tools and resources served by "calboard serve --transport stdio"
as markdown. The output is built from the live tool definitions, so the
defaults and limits shown match this binary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerateDocs(outputFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// argDoc and toolDoc are the rendered view of an mcp.Tool.
type argDoc struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

type toolDoc struct {
	Name        string
	Category    string
	Description string
	ReadOnly    bool
	Args        []argDoc
}

func runGenerateDocs(outputFile string, stdout io.Writer) error {
	// Tool definitions only read defaults from the config.
	sc, err := server.NewServerContext(context.Background(), config.Default())
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	tools := make([]mcp.Tool, 0)
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	markdown := generateToolsMarkdown(tools) + generateResourcesMarkdown(resources.Catalog())

	if outputFile == "" {
		_, err := fmt.Fprint(stdout, markdown)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

func newToolDoc(tool mcp.Tool) toolDoc {
	doc := toolDoc{
		Name:        tool.Name,
		Category:    getCategoryFromToolName(tool.Name),
		Description: tool.Description,
		ReadOnly:    tool.Annotations.ReadOnlyHint != nil && *tool.Annotations.ReadOnlyHint,
	}
	for name, prop := range tool.InputSchema.Properties {
		propMap, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		arg := argDoc{
			Name:     name,
			Type:     getPropertyType(propMap),
			Required: slices.Contains(tool.InputSchema.Required, name),
		}
		arg.Description, _ = propMap["description"].(string)
		doc.Args = append(doc.Args, arg)
	}
	sort.Slice(doc.Args, func(i, j int) bool { return doc.Args[i].Name < doc.Args[j].Name })
	return doc
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	byCategory := map[string][]toolDoc{}
	for _, tool := range tools {
		doc := newToolDoc(tool)
		byCategory[doc.Category] = append(byCategory[doc.Category], doc)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools and resources available when running calboard as an MCP server (`calboard serve --transport stdio`).\n\n")
	sb.WriteString("**Note:** generated by `calboard generate-docs`; do not edit by hand.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor(category))
	}
	sb.WriteString("- [Resources](#resources)\n\n")

	sb.WriteString("## Common Behavior\n\n")
	sb.WriteString("- **Read-only:** no tool modifies any calendar\n")
	sb.WriteString("- **Partial results:** calendars that fail are listed in the `errors` field; the others are still returned\n")
	sb.WriteString("- **Days:** `days` is clamped to the allowed range; omitting it uses the configured default\n\n")

	for _, category := range categories {
		docs := byCategory[category]
		sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, doc := range docs {
			sb.WriteString(doc.markdown())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func generateResourcesMarkdown(catalog []mcp.Resource) string {
	var sb strings.Builder
	sb.WriteString("## Resources\n\n")
	sb.WriteString("| URI | Name | Type | Description |\n|---|---|---|---|\n")
	for _, res := range catalog {
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", res.URI, res.Name, res.MIMEType, res.Description)
	}
	return sb.String()
}

// generateToolMarkdown renders one tool section.
func generateToolMarkdown(tool mcp.Tool) string {
	return newToolDoc(tool).markdown()
}

func (d toolDoc) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s\n\n", d.Name)
	if d.Description != "" {
		sb.WriteString(d.Description + "\n\n")
	}
	if d.ReadOnly {
		sb.WriteString("_Read-only._\n\n")
	}
	if len(d.Args) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	for _, arg := range d.Args {
		required := "optional"
		if arg.Required {
			required = "required"
		}
		desc := arg.Description
		if desc == "" {
			desc = arg.Type + " parameter"
		}
		fmt.Fprintf(&sb, "- `%s` (%s): %s\n", arg.Name, required, desc)
	}
	sb.WriteString("\n")
	return sb.String()
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "agenda":
		return "Agenda Tools"
	default:
		return "Other"
	}
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func anchor(heading string) string {
	return strings.ToLower(strings.ReplaceAll(heading, " ", "-"))
}
