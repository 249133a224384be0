package mcp

import "github.com/mark3labs/mcp-go/mcp"

const excludeDescription = "Categories to leave out: VARIABLES (every named type, unions included), " +
	"UNIONS, FUNCTIONS (function and object types)"

func extractPropsTool() mcp.Tool {
	return mcp.NewTool(
		"extract_props",
		mcp.WithDescription("Extract the public props (export let) of one Svelte component. "+
			"Returns name, type, union values and default value for each prop in declaration order."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a .svelte file, absolute or relative to the project root")),
		mcp.WithArray("exclude",
			mcp.Description(excludeDescription),
			mcp.Items(map[string]any{"type": "string", "enum": []string{"VARIABLES", "UNIONS", "FUNCTIONS"}})),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
}

func scanPropsTool() mcp.Tool {
	return mcp.NewTool(
		"scan_props",
		mcp.WithDescription("Extract the props of every Svelte component under a directory. "+
			"Files that fail are listed with their error."),
		mcp.WithString("root",
			mcp.Description("Directory to scan, absolute or relative to the project root (default: project root)")),
		mcp.WithArray("exclude",
			mcp.Description(excludeDescription),
			mcp.Items(map[string]any{"type": "string", "enum": []string{"VARIABLES", "UNIONS", "FUNCTIONS"}})),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
}
