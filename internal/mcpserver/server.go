// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Rolodex tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/singleflight"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/contactstore"
	"github.com/starford/rolodex/internal/coordinator"
	"github.com/starford/rolodex/internal/models"
	"github.com/starford/rolodex/internal/presenter"
)

const contractURI = "rolodex://contact-format"

// Server wraps the MCP server with Rolodex tools.
type Server struct {
	mcp       *server.MCPServer
	store  *contactstore.Store
	flight *singleflight.Group
	logger *slog.Logger
}

// New creates a new MCP server with all Rolodex tools registered.
func New(store *contactstore.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, flight: &singleflight.Group{}, logger: logger}

	s.mcp = server.NewMCPServer(
		"Rolodex",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List every contact with the tag vocabulary."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("search_contacts",
		mcp.WithDescription("Find contacts whose full name contains the query, ignoring case."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Name substring; empty matches everyone")),
	), s.searchContacts)

	s.mcp.AddTool(mcp.NewTool("filter_by_tag",
		mcp.WithDescription("List contacts carrying exactly this tag (case-sensitive)."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to filter on")),
	), s.filterByTag)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every distinct tag in first-seen order."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Read one contact by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id from a list result")),
	), s.getContact)

	s.mcp.AddTool(mcp.NewTool("create_contact",
		mcp.WithDescription("Create a contact. Read the rolodex://contact-format resource for field rules."),
		mcp.WithString("full_name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithString("phone_number", mcp.Required(), mcp.Description("Phone number")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createContact)

	s.mcp.AddTool(mcp.NewTool("update_contact",
		mcp.WithDescription("Update a contact. Omitted fields keep their current value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
		mcp.WithString("full_name", mcp.Description("Full name")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithString("phone_number", mcp.Description("Phone number")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; empty clears them")),
	), s.updateContact)

	s.mcp.AddTool(mcp.NewTool("delete_contact",
		mcp.WithDescription("Delete a contact by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
	), s.deleteContact)

	s.mcp.AddTool(mcp.NewTool("refresh_contacts",
		mcp.WithDescription("Re-fetch every contact from the contacts service."),
	), s.refreshContacts)

	s.mcp.AddTool(mcp.NewTool("get_contact_format",
		mcp.WithDescription("Returns the contact field rules. Call before creating or updating contacts."),
	), s.getContactFormat)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Contact Format",
			mcp.WithResourceDescription("Contact fields, tag rules and result shape."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContactFormatResource,
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

func (s *Server) coordinator() (*coordinator.Coordinator, *presenter.Recorder) {
	rec := presenter.NewRecorder()
	return coordinator.New(s.store, rec, s.logger, coordinator.WithFlightGroup(s.flight)), rec
}

func (s *Server) ensureLoaded(ctx context.Context) error {
	if s.store.Loaded() {
		return nil
	}
	c, _ := s.coordinator()
	return c.Load(ctx)
}

func (s *Server) listContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}
	c, rec := s.coordinator()
	c.ResetRequested()
	return s.viewResult(rec), nil
}

func (s *Server) searchContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}
	c, rec := s.coordinator()
	c.SearchInput(query)
	return s.viewResult(rec), nil
}

func (s *Server) filterByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}
	c, rec := s.coordinator()
	c.TagSelected(tag)
	return s.viewResult(rec), nil
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}
	tags := s.store.TagVocabulary()
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) getContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}
	c, _ := s.coordinator()
	contact, err := c.Lookup(models.ContactID(id))
	if err != nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(contact, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields := models.Fields{}
	for _, name := range models.RequiredFields {
		v, err := req.RequireString(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields[name] = v
	}
	if tags, err := req.RequireString(models.FieldTags); err == nil {
		fields[models.FieldTags] = tags
	}
	if blank := fields.Blank(); len(blank) > 0 {
		return mcp.NewToolResultError(strings.Join(blank, ", ") + ": cannot be blank"), nil
	}

	c, rec := s.coordinator()
	if err := c.FormSubmitted(ctx, fields, models.CreateSubmission()); err != nil {
		return toolError(err), nil
	}
	return s.viewResult(rec), nil
}

func (s *Server) updateContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := models.ContactID(rawID)
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError(err), nil
	}

	c, rec := s.coordinator()
	current, err := c.Lookup(id)
	if err != nil {
		return toolError(err), nil
	}
	fields := models.FieldsFromContact(current)
	for _, name := range []string{models.FieldFullName, models.FieldEmail, models.FieldPhoneNumber, models.FieldTags} {
		if v, err := req.RequireString(name); err == nil {
			fields[name] = v
		}
	}
	if blank := fields.Blank(); len(blank) > 0 {
		return mcp.NewToolResultError(strings.Join(blank, ", ") + ": cannot be blank"), nil
	}

	if err := c.FormSubmitted(ctx, fields, models.UpdateSubmission(id)); err != nil {
		return toolError(err), nil
	}
	return s.viewResult(rec), nil
}

func (s *Server) deleteContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, rec := s.coordinator()
	if err := c.DeleteConfirmed(ctx, models.ContactID(id)); err != nil {
		return toolError(err), nil
	}
	return s.viewResult(rec), nil
}

func (s *Server) refreshContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, rec := s.coordinator()
	if err := c.Load(ctx); err != nil {
		return toolError(err), nil
	}
	return s.viewResult(rec), nil
}

func (s *Server) getContactFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContactFormatContract), nil
}

func (s *Server) readContactFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     ContactFormatContract,
		},
	}, nil
}

// viewResult renders the recorded view as indented JSON, with the current
// tag vocabulary attached.
func (s *Server) viewResult(rec *presenter.Recorder) *mcp.CallToolResult {
	v := rec.View()
	v.Tags = s.store.TagVocabulary()
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// toolError turns the error taxonomy into a readable tool failure.
func toolError(err error) *mcp.CallToolResult {
	var se *apperr.ServiceError
	switch {
	case errors.As(err, &se) && errors.Is(err, apperr.ErrValidation):
		return mcp.NewToolResultError("rejected: " + se.Message)
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("contact not found")
	case errors.Is(err, apperr.ErrTransport):
		return mcp.NewToolResultError(fmt.Sprintf("contacts service unavailable: %v", err))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
