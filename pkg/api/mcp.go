package api

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/waymark-resolver/pkg/kit"
	"github.com/hazyhaar/waymark-resolver/pkg/resolve"
)

// RegisterMCPTools registers the Waymark MCP tools on the server.
// stations may be nil; the search_stations tool is then omitted.
func RegisterMCPTools(srv *server.MCPServer, r *resolve.Resolver, stations StationSearcher) {
	registerResolve(srv, r)
	registerCandidates(srv, r)
	registerConfirm(srv, r)
	if stations != nil {
		registerStations(srv, stations)
	}
}

func registerResolve(srv *server.MCPServer, r *resolve.Resolver) {
	tool := mcp.NewTool("resolve_location",
		mcp.WithDescription("Resolve a road location description (e.g. 'Tie 3: Valtatie 3 3.250') to its canonical forecast-section identifier."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The location description to resolve")),
	)

	kit.RegisterMCPTool(srv, tool, resolveEndpoint(r), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		query, _ := args["query"].(string)
		return &kit.MCPDecodeResult{Request: &resolveReq{Query: query}}, nil
	})
}

func registerCandidates(srv *server.MCPServer, r *resolve.Resolver) {
	tool := mcp.NewTool("list_candidates",
		mcp.WithDescription("List catalog records matching a road location description, most relevant first, for human disambiguation."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The location description to match")),
		mcp.WithNumber("max", mcp.Description("Maximum number of candidates to return")),
	)

	kit.RegisterMCPTool(srv, tool, candidatesEndpoint(r), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		query, _ := args["query"].(string)
		max := 0
		if n, ok := args["max"].(float64); ok {
			max = int(n)
		}
		return &kit.MCPDecodeResult{Request: &candidatesReq{Query: query, Max: max}}, nil
	})
}

func registerConfirm(srv *server.MCPServer, r *resolve.Resolver) {
	tool := mcp.NewTool("confirm_location",
		mcp.WithDescription("Persist a disambiguated choice: the query will resolve to the given identifier from now on."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The original location description")),
		mcp.WithString("id", mcp.Required(), mcp.Description("The chosen canonical identifier")),
	)

	kit.RegisterMCPTool(srv, tool, confirmEndpoint(r), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		query, _ := args["query"].(string)
		id, _ := args["id"].(string)
		return &kit.MCPDecodeResult{Request: &confirmReq{Query: query, ID: id}}, nil
	})
}

func registerStations(srv *server.MCPServer, s StationSearcher) {
	tool := mcp.NewTool("search_stations",
		mcp.WithDescription("Search road weather stations by id or name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Station id or name fragment")),
		mcp.WithNumber("max", mcp.Description("Maximum number of stations to return")),
	)

	kit.RegisterMCPTool(srv, tool, stationsEndpoint(s), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		query, _ := args["query"].(string)
		max := 0
		if n, ok := args["max"].(float64); ok {
			max = int(n)
		}
		return &kit.MCPDecodeResult{Request: &stationsReq{Query: query, Max: max}}, nil
	})
}
