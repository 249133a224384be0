package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/propspec/pkg/checker"
	"github.com/gnana997/propspec/pkg/props"
	"github.com/gnana997/propspec/pkg/scanner"
	"github.com/gnana997/propspec/pkg/script"
)

type extractResponse struct {
	Path  string       `json:"path"`
	Props []props.Prop `json:"props"`
}

type scanResponse struct {
	Root  string               `json:"root"`
	Files []scanner.FileResult `json:"files"`
	Stats scanner.ScanStats    `json:"stats"`
}

func (s *Server) handleExtractProps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	path, _ := args["path"].(string)
	if path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	opts, err := s.propOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path = s.resolve(path)
	result, err := s.ext.ExtractFile(ctx, path, opts)
	if err != nil {
		if isUserError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	if result == nil {
		result = []props.Prop{}
	}

	return marshalToolResponse(extractResponse{Path: path, Props: result})
}

func (s *Server) handleScanProps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	root, _ := args["root"].(string)
	opts, err := s.propOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	root = s.resolve(root)
	result, err := scanner.Scan(ctx, s.ext, root, s.config.Scan, opts, nil, nil)
	if err != nil {
		if isUserError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	files := result.Files
	if files == nil {
		files = []scanner.FileResult{}
	}
	return marshalToolResponse(scanResponse{Root: root, Files: files, Stats: result.Stats})
}

// propOptions reads the exclude argument, falling back to the configured
// default.
func (s *Server) propOptions(args map[string]any) (props.Options, error) {
	raw, ok := args["exclude"]
	if !ok || raw == nil {
		return props.Options{Exclude: s.config.Exclude}, nil
	}

	var names []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return props.Options{}, fmt.Errorf("invalid exclude entry: %v", item)
			}
			names = append(names, name)
		}
	case []string:
		names = v
	case string:
		names = []string{v}
	default:
		return props.Options{}, fmt.Errorf("invalid exclude: expected an array of strings")
	}

	cats, err := props.ParseCategories(names)
	if err != nil {
		return props.Options{}, err
	}
	return props.Options{Exclude: cats}, nil
}

func (s *Server) resolve(path string) string {
	if path == "" {
		path = "."
	}
	if filepath.IsAbs(path) || s.config.Root == "" {
		return path
	}
	return filepath.Join(s.config.Root, path)
}

// isUserError reports errors caused by the tool arguments or the component
// itself, which are returned to the client as tool errors.
func isUserError(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, script.ErrBlockNotFound) ||
		errors.Is(err, checker.ErrParse) ||
		errors.Is(err, props.ErrUnknownCategory) ||
		errors.Is(err, scanner.ErrNotDirectory) ||
		errors.Is(err, context.DeadlineExceeded)
}

// marshalToolResponse marshals a response object to JSON and returns it as an
// MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
