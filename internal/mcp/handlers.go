package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/search"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	sess *ops.Session
	cfg  *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *ops.Session, cfg *config.Config) *Handlers {
	return &Handlers{sess: sess, cfg: cfg}
}

// Request types for each tool

// AddLinkRequest represents the arguments for desktop_add_link.
type AddLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon,omitempty"`
}

// AddFolderRequest represents the arguments for desktop_add_folder.
type AddFolderRequest struct {
	Title string `json:"title"`
	Size  string `json:"size,omitempty"`
}

// SwapRequest represents the arguments for desktop_swap.
type SwapRequest struct {
	A *int `json:"a"`
	B *int `json:"b"`
}

// DropRequest represents the arguments for desktop_drop.
type DropRequest struct {
	Source *int `json:"source"`
	Target *int `json:"target"`
}

// DeleteRequest represents the arguments for desktop_delete.
type DeleteRequest struct {
	Slot *int `json:"slot"`
}

// ExportRequest represents the arguments for desktop_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
}

// ImportRequest represents the arguments for desktop_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// FolderRequest represents the arguments for folder_show.
type FolderRequest struct {
	ID string `json:"id"`
}

// ReorderRequest represents the arguments for folder_reorder.
type ReorderRequest struct {
	ID   string `json:"id"`
	From *int   `json:"from"`
	To   *int   `json:"to"`
}

// ResizeRequest represents the arguments for folder_resize.
type ResizeRequest struct {
	ID   string `json:"id"`
	Size string `json:"size,omitempty"`
}

// ExtractRequest represents the arguments for folder_extract.
type ExtractRequest struct {
	ID    string `json:"id"`
	Index *int   `json:"index"`
}

// DeleteLinkRequest represents the arguments for folder_delete_link.
type DeleteLinkRequest struct {
	ID     string `json:"id"`
	LinkID string `json:"link_id"`
}

// SearchURLRequest represents the arguments for search_url.
type SearchURLRequest struct {
	Query  string `json:"query"`
	Engine string `json:"engine,omitempty"`
}

// MutationResult is returned by every tool that may change the desktop.
type MutationResult struct {
	Outcome ops.Outcome         `json:"outcome"`
	Pending *ops.DeleteRequest  `json:"pending_delete,omitempty"`
	Item    grid.Item           `json:"item,omitempty"`
	Desktop *ops.DesktopSummary `json:"desktop,omitempty"`
}

// Handler implementations

// HandleShow handles the desktop_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Summarize(h.sess.Snapshot()))
}

// HandleAddLink handles the desktop_add_link tool call.
func (h *Handlers) HandleAddLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddLinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	link, out, err := h.sess.CreateLink(ctx, ops.CreateLinkInput{
		Title:    input.Title,
		Address:  input.URL,
		IconName: input.Icon,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(MutationResult{Outcome: out, Item: link})
}

// HandleAddFolder handles the desktop_add_folder tool call.
func (h *Handlers) HandleAddFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddFolderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	folder, out, err := h.sess.CreateFolder(ctx, ops.CreateFolderInput{
		Title: input.Title,
		Size:  input.Size,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(MutationResult{Outcome: out, Item: folder})
}

// HandleSwap handles the desktop_swap tool call.
func (h *Handlers) HandleSwap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SwapRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.A == nil || input.B == nil {
		return errorResult(errors.NewInvalidRequest("a and b are required")), nil
	}

	out, err := h.sess.Swap(ctx, *input.A, *input.B)
	return h.mutation(out, err)
}

// HandleDrop handles the desktop_drop tool call.
func (h *Handlers) HandleDrop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DropRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Source == nil || input.Target == nil {
		return errorResult(errors.NewInvalidRequest("source and target are required")), nil
	}

	out, err := h.sess.Drop(ctx, *input.Source, *input.Target)
	return h.mutation(out, err)
}

// HandleDelete handles the desktop_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Slot == nil {
		return errorResult(errors.NewInvalidRequest("slot is required")), nil
	}

	out, err := h.sess.RequestDeleteItem(ctx, *input.Slot)
	if err == nil && !out.Changed {
		err = errors.NewNotFound("slot", strconv.Itoa(*input.Slot))
	}
	return h.mutation(out, err)
}

// HandleConfirmDelete handles the desktop_confirm_delete tool call.
func (h *Handlers) HandleConfirmDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.sess.ConfirmDelete(ctx)
	return h.mutation(out, err)
}

// HandleCancelDelete handles the desktop_cancel_delete tool call.
func (h *Handlers) HandleCancelDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.sess.CancelDelete(ctx)
	return h.mutation(out, err)
}

// HandleExport handles the desktop_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Export(ctx, ops.ExportInput{Path: input.Path, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the desktop_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.sess.Import(ctx, ops.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleReset handles the desktop_reset tool call.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.sess.Reset(ctx)
	return h.mutation(out, err)
}

// HandleFolderShow handles the folder_show tool call.
func (h *Handlers) HandleFolderShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FolderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SummarizeFolder(h.sess.Snapshot(), input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFolderReorder handles the folder_reorder tool call.
func (h *Handlers) HandleFolderReorder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReorderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.From == nil || input.To == nil {
		return errorResult(errors.NewInvalidRequest("from and to are required")), nil
	}
	if err := h.requireFolder(input.ID); err != nil {
		return errorResult(err), nil
	}

	out, err := h.sess.Reorder(ctx, input.ID, *input.From, *input.To)
	return h.mutation(out, err)
}

// HandleFolderResize handles the folder_resize tool call.
func (h *Handlers) HandleFolderResize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if err := h.requireFolder(input.ID); err != nil {
		return errorResult(err), nil
	}

	var out ops.Outcome
	if input.Size == "" {
		out, err = h.sess.ToggleFolderSize(ctx, input.ID)
	} else {
		out, err = h.sess.SetFolderSize(ctx, input.ID, input.Size)
	}
	return h.mutation(out, err)
}

// HandleFolderExtract handles the folder_extract tool call.
func (h *Handlers) HandleFolderExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExtractRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Index == nil {
		return errorResult(errors.NewInvalidRequest("index is required")), nil
	}
	if err := h.requireFolder(input.ID); err != nil {
		return errorResult(err), nil
	}

	out, err := h.sess.Extract(ctx, input.ID, *input.Index)
	return h.mutation(out, err)
}

// HandleFolderDeleteLink handles the folder_delete_link tool call.
func (h *Handlers) HandleFolderDeleteLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteLinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if err := h.requireFolder(input.ID); err != nil {
		return errorResult(err), nil
	}

	out, err := h.sess.RequestDeleteLink(ctx, input.ID, input.LinkID)
	if err == nil && !out.Changed {
		err = errors.NewNotFound("link", input.LinkID)
	}
	return h.mutation(out, err)
}

// HandleSearchURL handles the search_url tool call.
func (h *Handlers) HandleSearchURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchURLRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	name := input.Engine
	if name == "" {
		name = h.cfg.SearchEngine
	}
	engine, err := search.Parse(name)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	target, ok := engine.URL(input.Query)
	if !ok {
		return errorResult(errors.NewInvalidRequest("query is required")), nil
	}
	return successResult(map[string]any{"engine": engine, "url": target})
}

// requireFolder turns a stale folder id into NOT_FOUND. Reducers treat it as
// a silent no-op, which is unhelpful to a tool caller.
func (h *Handlers) requireFolder(id string) error {
	if _, _, ok := h.sess.Snapshot().Grid.Folder(id); !ok {
		return errors.NewNotFound("folder", id)
	}
	return nil
}

// mutation renders the result of a Session call that returns an Outcome.
func (h *Handlers) mutation(out ops.Outcome, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	d := h.sess.Snapshot()
	summary := ops.Summarize(d)
	return successResult(MutationResult{Outcome: out, Pending: d.PendingDelete, Desktop: &summary})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.PerchError
	if stderrors.As(err, &pErr) {
		message := pErr.Message
		if pErr.Code != errors.ErrInternal && err.Error() != pErr.Error() {
			// Keep wrapper context such as "import: ..."
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": message,
			"status":  pErr.Status,
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
