package agenda_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/server"
	"github.com/teemow/calboard/internal/sources"
	"github.com/teemow/calboard/internal/tools/common"
)

// Tool names.
const (
	ToolEvents    = "agenda_events"
	ToolWall      = "agenda_wall"
	ToolCalendars = "agenda_calendars"
)

type calendarInfo struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// RegisterAgendaTools registers the read-only agenda tools with the MCP server
func RegisterAgendaTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	eventsTool := mcp.NewTool(ToolEvents,
		mcp.WithDescription("List events from all configured calendars, merged and sorted by start. Calendars that fail are reported in the errors field; the others are still returned."),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Number of days from now to include (default: %d, max: %d)", sc.Config().FlatDefaultDays, agenda.FlatMaxDays)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(eventsTool, common.InstrumentedToolHandler(ToolEvents, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEvents(ctx, request, sc)
	}))

	wallTool := mcp.NewTool(ToolWall,
		mcp.WithDescription("Show today's events and upcoming events in the configured time zone, with display times, starting at local midnight."),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Number of days from today to include (default: %d, max: %d)", sc.Config().WallDefaultDays, agenda.WallMaxDays)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(wallTool, common.InstrumentedToolHandler(ToolWall, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWall(ctx, request, sc)
	}))

	calendarsTool := mcp.NewTool(ToolCalendars,
		mcp.WithDescription("List the configured calendar ids and whether each is a Google calendar or an ICS feed"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(calendarsTool, common.InstrumentedToolHandler(ToolCalendars, sc, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCalendars(sc)
	}))

	return nil
}

func handleEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	report, err := sc.FlatReport(ctx, common.DaysArg(request.GetArguments()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}
	return jsonResult(report)
}

func handleWall(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	report, err := sc.WallReport(ctx, common.DaysArg(request.GetArguments()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build wall view: %v", err)), nil
	}
	return jsonResult(report)
}

func handleCalendars(sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ids := sc.Config().CalendarIDs
	calendars := make([]calendarInfo, 0, len(ids))
	for _, id := range ids {
		calendars = append(calendars, calendarInfo{ID: id, Source: sources.Kind(id)})
	}
	return jsonResult(map[string]any{
		"timezone":  sc.Location().String(),
		"calendars": calendars,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(result)), nil
}
