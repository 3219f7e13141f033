// Package fsio provides the built-in filesystem tools offered to the model:
//
//   - "read_file"  — read a file and return its full text content.
//   - "list_files" — list the immediate entries of a directory.
//   - "edit_file"  — replace the first occurrence of a string in a file, or
//     create/overwrite the file when the search string is empty.
//
// Paths are resolved against the current working directory with a leading
// home-directory marker ("~") expanded. There is no sandboxing; the tools
// operate on the real filesystem with the process's permissions.
package fsio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tool result action values for "edit_file".
const (
	ActionCreated  = "created_file"
	ActionEdited   = "edited"
	ActionNotFound = "old_str not found"
)

// readFileArgs is the JSON-decoded input for the "read_file" tool.
type readFileArgs struct {
	// Filename is the path of the file to read, absolute or relative to the
	// working directory.
	Filename string `json:"filename"`
}

// readFileResult is the JSON-encoded output of the "read_file" tool.
type readFileResult struct {
	// FilePath is the resolved absolute path of the file.
	FilePath string `json:"file_path"`

	// Content is the full text content of the file.
	Content string `json:"content"`
}

// listFilesArgs is the JSON-decoded input for the "list_files" tool.
type listFilesArgs struct {
	// Path is the directory to enumerate.
	Path string `json:"path"`
}

// listEntry is one directory entry in a listFilesResult.
type listEntry struct {
	// Filename is the entry's base name.
	Filename string `json:"filename"`

	// Type is "file" or "dir".
	Type string `json:"type"`
}

// listFilesResult is the JSON-encoded output of the "list_files" tool.
type listFilesResult struct {
	// Path is the resolved absolute path of the directory.
	Path string `json:"path"`

	// Files lists the directory's immediate entries (non-recursive).
	Files []listEntry `json:"files"`
}

// editFileArgs is the JSON-decoded input for the "edit_file" tool.
type editFileArgs struct {
	// Path is the file to edit or create.
	Path string `json:"path"`

	// OldStr is the exact substring to replace. Empty means create/overwrite
	// the file with NewStr as its full content.
	OldStr string `json:"old_str"`

	// NewStr is the replacement text.
	NewStr string `json:"new_str"`
}

// editFileResult is the JSON-encoded output of the "edit_file" tool.
type editFileResult struct {
	// Path is the resolved absolute path of the file.
	Path string `json:"path"`

	// Action is one of "created_file", "edited", or "old_str not found".
	Action string `json:"action"`
}

// resolvePath turns a user- or model-supplied path into a cleaned absolute
// path: absolute paths are used as-is, a leading "~" is expanded to the home
// directory, and relative paths are joined to the current working directory.
// Symlinks are not resolved, so results stay deterministic and readable.
func resolvePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("fsio: path must not be empty")
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("fsio: expand home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("fsio: resolve %q: %w", p, err)
	}
	return abs, nil
}

// readFile is the handler for the "read_file" tool.
func readFile(ctx context.Context, args string) (string, error) {
	var a readFileArgs
	if err := json.Unmarshal([]byte(args), &a); err != nil {
		return "", fmt.Errorf("fsio: read_file: parse arguments: %w", err)
	}
	if a.Filename == "" {
		return "", fmt.Errorf("fsio: read_file: filename is required")
	}

	absPath, err := resolvePath(a.Filename)
	if err != nil {
		return "", fmt.Errorf("fsio: read_file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("fsio: read_file: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("fsio: read_file: %w", err)
	}

	return encodeResult("read_file", readFileResult{
		FilePath: absPath,
		Content:  string(data),
	})
}

// listFiles is the handler for the "list_files" tool.
func listFiles(ctx context.Context, args string) (string, error) {
	var a listFilesArgs
	if err := json.Unmarshal([]byte(args), &a); err != nil {
		return "", fmt.Errorf("fsio: list_files: parse arguments: %w", err)
	}
	if a.Path == "" {
		return "", fmt.Errorf("fsio: list_files: path is required")
	}

	absPath, err := resolvePath(a.Path)
	if err != nil {
		return "", fmt.Errorf("fsio: list_files: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("fsio: list_files: %w", err)
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		return "", fmt.Errorf("fsio: list_files: %w", err)
	}

	result := listFilesResult{Path: absPath, Files: []listEntry{}}
	for _, e := range entries {
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		result.Files = append(result.Files, listEntry{Filename: e.Name(), Type: kind})
	}

	return encodeResult("list_files", result)
}

// editFile is the handler for the "edit_file" tool.
//
// Two disjoint behaviours keyed on OldStr: an empty OldStr unconditionally
// creates or overwrites the file with NewStr; a non-empty OldStr replaces only
// its first occurrence. A missing OldStr is a reported outcome, not an error,
// and leaves the file untouched.
func editFile(ctx context.Context, args string) (string, error) {
	var a editFileArgs
	if err := json.Unmarshal([]byte(args), &a); err != nil {
		return "", fmt.Errorf("fsio: edit_file: parse arguments: %w", err)
	}
	if a.Path == "" {
		return "", fmt.Errorf("fsio: edit_file: path is required")
	}

	absPath, err := resolvePath(a.Path)
	if err != nil {
		return "", fmt.Errorf("fsio: edit_file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("fsio: edit_file: %w", err)
	}

	if a.OldStr == "" {
		if err := os.WriteFile(absPath, []byte(a.NewStr), 0o644); err != nil {
			return "", fmt.Errorf("fsio: edit_file: write file: %w", err)
		}
		return encodeResult("edit_file", editFileResult{Path: absPath, Action: ActionCreated})
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("fsio: edit_file: %w", err)
	}
	original := string(data)

	if !strings.Contains(original, a.OldStr) {
		return encodeResult("edit_file", editFileResult{Path: absPath, Action: ActionNotFound})
	}

	edited := strings.Replace(original, a.OldStr, a.NewStr, 1)
	if err := os.WriteFile(absPath, []byte(edited), 0o644); err != nil {
		return "", fmt.Errorf("fsio: edit_file: write file: %w", err)
	}

	return encodeResult("edit_file", editFileResult{Path: absPath, Action: ActionEdited})
}

// encodeResult marshals a tool result to its JSON wire form.
func encodeResult(tool string, v any) (string, error) {
	res, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fsio: %s: encode result: %w", tool, err)
	}
	return string(res), nil
}
