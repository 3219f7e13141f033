package fsio

import (
	"github.com/MrWong99/tinker/internal/tools"
	"github.com/MrWong99/tinker/pkg/provider/llm"
)

// NewTools constructs the filesystem tool set. Definitions follow the OpenAI
// function-calling convention: an object-typed JSON Schema with per-parameter
// descriptions and an explicit required list.
func NewTools() []tools.Tool {
	return []tools.Tool{
		{
			Definition: llm.ToolDefinition{
				Name:        "read_file",
				Description: "Gets the full content of a file provided by the user.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"filename": map[string]any{
							"type":        "string",
							"description": "The name of the file to read.",
						},
					},
					"required": []string{"filename"},
				},
			},
			Handler: readFile,
		},
		{
			Definition: llm.ToolDefinition{
				Name:        "list_files",
				Description: "Lists the files in a directory provided by the user.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{
							"type":        "string",
							"description": "The path to a directory to list files from.",
						},
					},
					"required": []string{"path"},
				},
			},
			Handler: listFiles,
		},
		{
			Definition: llm.ToolDefinition{
				Name:        "edit_file",
				Description: "Replaces first occurrence of old_str with new_str in file. If old_str is empty, create/overwrite file with new_str.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{
							"type":        "string",
							"description": "The path to the file to edit.",
						},
						"old_str": map[string]any{
							"type":        "string",
							"description": "The string to replace.",
						},
						"new_str": map[string]any{
							"type":        "string",
							"description": "The string to replace with.",
						},
					},
					"required": []string{"path", "old_str", "new_str"},
				},
			},
			Handler: editFile,
		},
	}
}
