package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/pricematrix/pkg/tier"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerGetPricingTool(srv, svc)
	registerSetPriceTool(srv, svc)
	registerClearPricingTool(srv, svc)
}

func registerGetPricingTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_pricing",
		mcp.WithDescription("Return the stored pricing matrix."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.GetPricing(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetPriceTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_price",
		mcp.WithDescription("Set one price and save. Setting the lite tier also sets standard to 2x and unlimited to 3x."),
		mcp.WithString("row",
			mcp.Required(),
			mcp.Description("Row (plan) name."),
		),
		mcp.WithString("tier",
			mcp.Required(),
			mcp.Description("Tier to set."),
			mcp.Enum(tier.Strings()...),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Price made of digits and at most one dot, e.g. 12.5."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Row   string `json:"row"`
			Tier  string `json:"tier"`
			Value string `json:"value"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.SetPrice(ctx, args.Row, args.Tier, args.Value)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerClearPricingTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"clear_pricing",
		mcp.WithDescription("Set every price to 0 and save."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.ClearPricing(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
