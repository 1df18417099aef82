// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Munin tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/digest"
	"github.com/eldrid/munin/internal/noteservice"
)

// Server wraps the MCP server with Munin tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Munin tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Munin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note with its extracted tags, contacts, links, and action items."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. daily/2026-08-28.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note at the specified path. "+
			"Content MUST follow the annotation conventions (@First Last for people, "+
			"#tag for topics, [[Title]] for links, '- [ ]' for action items). "+
			"Read the contract first via the get_note_contract tool or the "+
			"munin://note-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new note (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Plain-text content following the Munin note format contract")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes or notes in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the given title, with context snippets."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Link target title as written inside [[...]]")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("weekly_summary",
		mcp.WithDescription("Generate a digest of the last seven days: top contacts, top tags, "+
			"companies, meetings, deals, and pending action items."),
		mcp.WithString("format", mcp.Description("Output format: markdown (default) or json")),
	), s.weeklySummary)

	s.mcp.AddTool(mcp.NewTool("structure_transcript",
		mcp.WithDescription("Structure a raw voice transcript into a typed memory with title, "+
			"summary, attendees, key points, action items, and suggested tags."),
		mcp.WithString("transcript", mcp.Required(), mcp.Description("Raw transcript text")),
		mcp.WithBoolean("save", mcp.Description("Append the structured memory to today's daily note")),
	), s.structureTranscript)

	s.mcp.AddTool(mcp.NewTool("suggest_tags",
		mcp.WithDescription("Suggest topic tags for a piece of text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to analyze")),
	), s.suggestTags)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Munin note format contract. "+
			"Call this before creating or updating notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("munin://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Annotation conventions that all notes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateNote(ctx, path, []byte(content)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	notes, err := s.svc.LoadAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, n := range notes {
		if folder != "" && !strings.HasPrefix(n.Path, folder+"/") {
			continue
		}
		paths = append(paths, n.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	var b strings.Builder
	for _, l := range bl {
		fmt.Fprintf(&b, "%s: %s\n", l.Source, l.Context)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) weeklySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.WeeklySummary(ctx, time.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if format, fmtErr := req.RequireString("format"); fmtErr == nil && format == "json" {
		out, _ := json.MarshalIndent(sum, "", "  ")
		return mcp.NewToolResultText(string(out)), nil
	}
	return mcp.NewToolResultText(digest.FormatMarkdown(sum)), nil
}

func (s *Server) structureTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	save := req.GetBool("save", false)

	memory, savedPath, err := s.svc.StructureTranscript(ctx, transcript, save, time.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.MarshalIndent(memory, "", "  ")
	text := string(out)
	if savedPath != "" {
		text += "\n\nsaved to: " + savedPath
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) suggestTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := annotate.SuggestTags(text)
	if len(tags) == 0 {
		return mcp.NewToolResultText("no suggestions"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "munin://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
