package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/eldrid/munin/internal/index"
	"github.com/eldrid/munin/internal/noteservice"
	"github.com/eldrid/munin/internal/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "munin-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return New(noteservice.NewService(store, db))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "weekly_summary":
		result, err = srv.weeklySummary(ctx, req)
	case "structure_transcript":
		result, err = srv.structureTranscript(ctx, req)
	case "suggest_tags":
		result, err = srv.suggestTags(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "daily/2026-08-28.md",
		"content": "Met @Jane Doe about #iot",
	})
	if text := resultText(r); text != "created: daily/2026-08-28.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{
		"path": "daily/2026-08-28.md",
	})
	var note noteservice.NoteDetail
	if err := json.Unmarshal([]byte(resultText(r)), &note); err != nil {
		t.Fatalf("read result not JSON: %v", err)
	}
	if len(note.Contacts) != 1 || note.Contacts[0] != "Jane Doe" {
		t.Errorf("contacts = %v", note.Contacts)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "iot" {
		t.Errorf("tags = %v", note.Tags)
	}
}

func TestCreateDuplicateNote(t *testing.T) {
	srv := testServer(t)

	args := map[string]interface{}{"path": "daily/dup.md", "content": "a"}
	callTool(t, srv, "create_note", args)
	r := callTool(t, srv, "create_note", args)
	if !r.IsError {
		t.Errorf("duplicate create should be an error, got %q", resultText(r))
	}
}

func TestListNotesByFolder(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"path": "daily/a.md", "content": "a"})
	callTool(t, srv, "create_note", map[string]interface{}{"path": "topics/b.md", "content": "b"})

	r := callTool(t, srv, "list_notes", map[string]interface{}{"folder": "daily"})
	text := resultText(r)
	if text != "daily/a.md" {
		t.Errorf("list = %q", text)
	}
}

func TestGetBacklinksWithContext(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "daily/a.md",
		"content": "Kickoff for [[Project Alpha]] went well",
	})

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"title": "Project Alpha"})
	text := resultText(r)
	if !strings.HasPrefix(text, "daily/a.md: ") || !strings.Contains(text, "[[Project Alpha]]") {
		t.Errorf("backlinks = %q", text)
	}

	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"title": "Nothing"})
	if resultText(r) != "no backlinks found" {
		t.Errorf("empty backlinks = %q", resultText(r))
	}
}

func TestWeeklySummaryMarkdown(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{
		"path":    "daily/a.md",
		"content": "Meeting with @Jane Doe about #sales",
	})

	r := callTool(t, srv, "weekly_summary", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "## Stats") || !strings.Contains(text, "Jane Doe") {
		t.Errorf("summary = %q", text)
	}
}

func TestStructureTranscriptTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "structure_transcript", map[string]interface{}{
		"transcript": "Had a call with Jane about pricing. I need to send the proposal by Friday.",
	})
	var memory map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(r)), &memory); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if memory["type"] != "call" {
		t.Errorf("type = %v, want call", memory["type"])
	}
}

func TestStructureTranscriptSaves(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "structure_transcript", map[string]interface{}{
		"transcript": "Remind me to renew the domain tomorrow.",
		"save":       true,
	})
	text := resultText(r)
	if !strings.Contains(text, "saved to: daily/") {
		t.Errorf("result = %q, missing saved path", text)
	}
}

func TestSuggestTagsTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "suggest_tags", map[string]interface{}{
		"text": "The lorawan gateway firmware needs an update",
	})
	if resultText(r) != "iot" {
		t.Errorf("tags = %q", resultText(r))
	}

	r = callTool(t, srv, "suggest_tags", map[string]interface{}{"text": "nothing interesting"})
	if resultText(r) != "no suggestions" {
		t.Errorf("empty = %q", resultText(r))
	}
}

func TestNoteContract(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_note_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "@First Last") || !strings.Contains(text, "[[Title]]") {
		t.Errorf("contract missing conventions: %q", text)
	}
}
