// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes NoteKeep tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notekeep/notekeep/internal/apperr"
	"github.com/notekeep/notekeep/internal/models"
	"github.com/notekeep/notekeep/internal/notestore"
	"github.com/notekeep/notekeep/internal/query"
)

// Server wraps the MCP server with NoteKeep tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all NoteKeep tools registered.
func New(store *notestore.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"NoteKeep",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, pinned first, newest first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search over note titles, content, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note by its numeric id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. A blank title becomes \"Untitled Note\"; "+
			"a note with no title, content, or attachments is rejected. See the "+
			"notekeep://note-schema resource for the full note shape."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note body text")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. \"work, q3\"")),
		mcp.WithBoolean("pinned", mcp.Description("Pin the note to the top of the list")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("toggle_pin",
		mcp.WithDescription("Toggle the pinned state of a note."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.togglePin)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note permanently. Deletion must be confirmed: "+
			"pass confirm=true or the note is left untouched."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to actually delete")),
	), s.deleteNote)

	// Resource: note schema.
	s.mcp.AddResource(
		mcp.NewResource("notekeep://note-schema", "Note Schema",
			mcp.WithResourceDescription("The JSON shape of a NoteKeep note."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteSchemaResource,
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

func noteJSON(notes []models.Note) string {
	out, _ := json.MarshalIndent(notes, "", "  ")
	return string(out)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes := query.View(s.store.All(), "")
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(noteJSON(notes)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := query.View(s.store.All(), term)
	if len(notes) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return mcp.NewToolResultText(noteJSON(notes)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.Get(int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := models.Draft{
		Title:   req.GetString("title", ""),
		Content: req.GetString("content", ""),
		TagsRaw: req.GetString("tags", ""),
		Pinned:  req.GetBool("pinned", false),
	}
	note, err := s.store.Create(draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %d (%s)", note.ID, note.Title)), nil
}

func (s *Server) togglePin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.TogglePin(int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("pinned=%v: %d", note.Pinned, note.ID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError(
			fmt.Sprintf("%s: pass confirm=true to delete note %d", apperr.ErrConfirmRequired, id)), nil
	}
	if err := s.store.Delete(int64(id)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) readNoteSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "notekeep://note-schema",
			MIMEType: "text/markdown",
			Text:     NoteSchema,
		},
	}, nil
}
