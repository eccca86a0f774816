package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calboard/internal/server"
	"github.com/teemow/calboard/internal/sources"
)

// Resource URIs.
const (
	URIConfig = "agenda://config"
	URIWall   = "agenda://wall"
)

const mimeJSON = "application/json"

type calendar struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

type configView struct {
	Timezone        string     `json:"timezone"`
	Calendars       []calendar `json:"calendars"`
	FlatDefaultDays int        `json:"flatDefaultDays"`
	WallDefaultDays int        `json:"wallDefaultDays"`
	FetchTimeout    string     `json:"fetchTimeout"`
	ProbeSchedule   string     `json:"probeSchedule"`
	Valid           bool       `json:"valid"`
	Problem         string     `json:"problem,omitempty"`
}

// Catalog returns the agenda resource definitions.
func Catalog() []mcp.Resource {
	return []mcp.Resource{
		mcp.NewResource(
			URIConfig,
			"Agenda Configuration",
			mcp.WithResourceDescription("Configured calendars, time zone and default windows"),
			mcp.WithMIMEType(mimeJSON),
		),
		mcp.NewResource(
			URIWall,
			"Wall View",
			mcp.WithResourceDescription("Today's and upcoming events over the default wall window"),
			mcp.WithMIMEType(mimeJSON),
		),
	}
}

// RegisterAgendaResources registers the agenda resources with the MCP server
func RegisterAgendaResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	handlers := map[string]func(context.Context, mcp.ReadResourceRequest, *server.ServerContext) ([]mcp.ResourceContents, error){
		URIConfig: handleConfig,
		URIWall:   handleWall,
	}
	for _, res := range Catalog() {
		handle, ok := handlers[res.URI]
		if !ok {
			return fmt.Errorf("no handler for resource %s", res.URI)
		}
		s.AddResource(res, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handle(ctx, request, sc)
		})
	}
	return nil
}

func handleConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	view := configView{
		Timezone:        sc.Location().String(),
		Calendars:       make([]calendar, 0, len(cfg.CalendarIDs)),
		FlatDefaultDays: cfg.FlatDefaultDays,
		WallDefaultDays: cfg.WallDefaultDays,
		FetchTimeout:    cfg.FetchTimeout.String(),
		ProbeSchedule:   cfg.ProbeSchedule,
		Valid:           true,
	}
	for _, id := range cfg.CalendarIDs {
		view.Calendars = append(view.Calendars, calendar{ID: id, Source: sources.Kind(id)})
	}
	if err := cfg.Validate(); err != nil {
		view.Valid = false
		view.Problem = err.Error()
	}
	return jsonContents(request.Params.URI, view)
}

func handleWall(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	report, err := sc.WallReport(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build wall view: %w", err)
	}
	return jsonContents(request.Params.URI, report)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}
