package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/db"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/store"
)

// testSetup creates a temporary database, a session over it and a config.
func testSetup(t *testing.T) (*ops.Session, *config.Config) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	sess, err := ops.NewSession(context.Background(), store.NewSQLite(database, store.DefaultKey), cfg,
		ops.WithClock(gesture.NewFakeClock()))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleShow(t *testing.T) {
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	result, err := h.HandleShow(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)

	if output["used"] != float64(3) {
		t.Errorf("used = %v, want 3", output["used"])
	}
	items := output["items"].([]any)
	first := items[0].(map[string]any)
	if first["id"] != "single-link" || first["slot"] != float64(2) {
		t.Errorf("first item = %v, want single-link at slot 2", first)
	}
}

func TestHandleAddLink(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		sess, cfg := testSetup(t)
		h := NewHandlers(sess, cfg)

		result, err := h.HandleAddLink(ctx, makeRequest(map[string]any{
			"title": "Docs",
			"url":   "go.dev/doc",
			"icon":  "Code",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := parseOutput(t, result)
		item := output["item"].(map[string]any)
		if item["url"] != "https://go.dev/doc" {
			t.Errorf("url = %v, want https://go.dev/doc", item["url"])
		}
		if item["iconName"] != "Code" {
			t.Errorf("iconName = %v, want Code", item["iconName"])
		}
		if id, _ := item["id"].(string); len(id) != 26 {
			t.Errorf("id = %q, want a 26-char ULID", id)
		}
		outcome := output["outcome"].(map[string]any)
		if outcome["slot"] != float64(0) {
			t.Errorf("slot = %v, want 0", outcome["slot"])
		}
	})

	t.Run("missing title", func(t *testing.T) {
		sess, cfg := testSetup(t)
		h := NewHandlers(sess, cfg)

		result, _ := h.HandleAddLink(ctx, makeRequest(map[string]any{"url": "x.com"}))
		if !result.IsError {
			t.Fatal("expected error result")
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("unknown argument", func(t *testing.T) {
		sess, cfg := testSetup(t)
		h := NewHandlers(sess, cfg)

		result, _ := h.HandleAddLink(ctx, makeRequest(map[string]any{"title": "a", "url": "b.com", "slot": 3}))
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("grid full", func(t *testing.T) {
		sess, cfg := testSetup(t)
		h := NewHandlers(sess, cfg)

		for i := 0; i < 21; i++ {
			result, _ := h.HandleAddLink(ctx, makeRequest(map[string]any{"title": fmt.Sprintf("L%d", i), "url": "e.com"}))
			if result.IsError {
				t.Fatalf("add %d failed: %s", i, extractErrorMessage(result))
			}
		}
		result, _ := h.HandleAddLink(ctx, makeRequest(map[string]any{"title": "one too many", "url": "e.com"}))
		assertErrorCode(t, result, "GRID_FULL")
		if msg := extractErrorMessage(result); !strings.Contains(msg, "Grid is full!") {
			t.Errorf("message = %s, want Grid is full!", msg)
		}
	})
}

func TestHandleAddFolder(t *testing.T) {
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	result, _ := h.HandleAddFolder(context.Background(), makeRequest(map[string]any{"title": "Work"}))
	item := parseOutput(t, result)["item"].(map[string]any)
	if item["folderSize"] != "3x3" {
		t.Errorf("folderSize = %v, want default 3x3", item["folderSize"])
	}
	if links := item["links"].([]any); len(links) != 0 {
		t.Errorf("links = %v, want empty", links)
	}

	result, _ = h.HandleAddFolder(context.Background(), makeRequest(map[string]any{"title": "Bad", "size": "5x5"}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleSwapAndDrop(t *testing.T) {
	ctx := context.Background()
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	result, _ := h.HandleSwap(ctx, makeRequest(map[string]any{"a": 2, "b": 20}))
	outcome := parseOutput(t, result)["outcome"].(map[string]any)
	if outcome["changed"] != true {
		t.Fatalf("swap outcome = %v, want changed", outcome)
	}
	if sess.Snapshot().Grid.Get(20).ItemID() != "single-link" {
		t.Fatal("single-link should be at slot 20")
	}

	result, _ = h.HandleSwap(ctx, makeRequest(map[string]any{"a": 2, "b": 99}))
	outcome = parseOutput(t, result)["outcome"].(map[string]any)
	if outcome["changed"] != false {
		t.Errorf("out-of-range swap should not change, got %v", outcome)
	}

	result, _ = h.HandleSwap(ctx, makeRequest(map[string]any{"a": 2}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	// Link onto folder merges.
	result, _ = h.HandleDrop(ctx, makeRequest(map[string]any{"source": 20, "target": 3}))
	outcome = parseOutput(t, result)["outcome"].(map[string]any)
	if outcome["op"] != "merge" {
		t.Fatalf("op = %v, want merge", outcome["op"])
	}
	if sess.Snapshot().Grid.Get(20) != nil {
		t.Error("source slot should be empty after merge")
	}
	f, _, _ := sess.Snapshot().Grid.Folder("folder-2x2")
	if len(f.Links) != 5 || f.Links[4].ID != "single-link" {
		t.Errorf("folder links = %d, want single-link appended", len(f.Links))
	}

	// Folder onto folder swaps.
	result, _ = h.HandleDrop(ctx, makeRequest(map[string]any{"source": 3, "target": 4}))
	outcome = parseOutput(t, result)["outcome"].(map[string]any)
	if outcome["op"] != "swap" {
		t.Errorf("op = %v, want swap", outcome["op"])
	}
}

func TestHandleDelete_TwoPhase(t *testing.T) {
	ctx := context.Background()
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	result, _ := h.HandleDelete(ctx, makeRequest(map[string]any{"slot": 2}))
	output := parseOutput(t, result)
	pending := output["pending_delete"].(map[string]any)
	if pending["name"] != "Traveler's Log" {
		t.Errorf("pending name = %v", pending["name"])
	}
	if sess.Snapshot().Grid.Get(2) == nil {
		t.Fatal("request alone must not delete")
	}

	result, _ = h.HandleCancelDelete(ctx, makeRequest(nil))
	if _, ok := parseOutput(t, result)["pending_delete"]; ok {
		t.Error("cancel should clear the request")
	}

	h.HandleDelete(ctx, makeRequest(map[string]any{"slot": 2}))
	result, _ = h.HandleConfirmDelete(ctx, makeRequest(nil))
	if parseOutput(t, result)["outcome"].(map[string]any)["changed"] != true {
		t.Error("confirm should change the grid")
	}
	if sess.Snapshot().Grid.Get(2) != nil {
		t.Error("slot 2 should be empty")
	}

	result, _ = h.HandleConfirmDelete(ctx, makeRequest(nil))
	assertErrorCode(t, result, "NO_PENDING_DELETE")

	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"slot": 2}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleFolderTools(t *testing.T) {
	ctx := context.Background()
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	result, _ := h.HandleFolderShow(ctx, makeRequest(map[string]any{"id": "folder-3x3"}))
	output := parseOutput(t, result)
	if output["capacity"] != float64(9) || len(output["links"].([]any)) != 9 {
		t.Fatalf("folder_show = %v", output)
	}

	result, _ = h.HandleFolderReorder(ctx, makeRequest(map[string]any{"id": "folder-3x3", "from": 0, "to": 8}))
	parseOutput(t, result)
	f, _, _ := sess.Snapshot().Grid.Folder("folder-3x3")
	if f.Links[0].ID != "t9" || f.Links[8].ID != "t1" {
		t.Errorf("reorder: first=%s last=%s", f.Links[0].ID, f.Links[8].ID)
	}

	result, _ = h.HandleFolderResize(ctx, makeRequest(map[string]any{"id": "folder-3x3"}))
	parseOutput(t, result)
	result, _ = h.HandleFolderShow(ctx, makeRequest(map[string]any{"id": "folder-3x3"}))
	output = parseOutput(t, result)
	if output["size"] != "2x2" || output["hidden"] != float64(5) {
		t.Errorf("after toggle size=%v hidden=%v, want 2x2 with 5 hidden", output["size"], output["hidden"])
	}

	result, _ = h.HandleFolderExtract(ctx, makeRequest(map[string]any{"id": "folder-3x3", "index": 0}))
	outcome := parseOutput(t, result)["outcome"].(map[string]any)
	if outcome["slot"] != float64(0) || outcome["id"] != "t9" {
		t.Errorf("extract outcome = %v, want t9 at slot 0", outcome)
	}

	result, _ = h.HandleFolderDeleteLink(ctx, makeRequest(map[string]any{"id": "folder-2x2", "link_id": "g3"}))
	pending := parseOutput(t, result)["pending_delete"].(map[string]any)
	if pending["kind"] != "folder" || pending["name"] != "Calendar" {
		t.Errorf("pending = %v", pending)
	}

	result, _ = h.HandleFolderDeleteLink(ctx, makeRequest(map[string]any{"id": "folder-2x2", "link_id": "zzz"}))
	assertErrorCode(t, result, "NOT_FOUND")

	for _, call := range []func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		h.HandleFolderShow, h.HandleFolderResize,
	} {
		result, _ = call(ctx, makeRequest(map[string]any{"id": "missing"}))
		assertErrorCode(t, result, "NOT_FOUND")
	}
}

func TestHandleExportImport(t *testing.T) {
	ctx := context.Background()
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	path := filepath.Join(t.TempDir(), "layout.json")
	result, _ := h.HandleExport(ctx, makeRequest(map[string]any{"path": path}))
	output := parseOutput(t, result)
	if output["items"] != float64(3) {
		t.Errorf("exported items = %v, want 3", output["items"])
	}

	h.HandleSwap(ctx, makeRequest(map[string]any{"a": 2, "b": 23}))
	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{"path": path}))
	parseOutput(t, result)
	if sess.Snapshot().Grid.Get(2).ItemID() != "single-link" {
		t.Error("import should restore the exported layout")
	}

	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{"path": filepath.Join(t.TempDir(), "nope.json")}))
	assertErrorCode(t, result, "FILE_NOT_FOUND")
}

func TestHandleReset(t *testing.T) {
	ctx := context.Background()
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)

	h.HandleSwap(ctx, makeRequest(map[string]any{"a": 2, "b": 23}))
	result, _ := h.HandleReset(ctx, makeRequest(nil))
	parseOutput(t, result)
	if sess.Snapshot().Grid.Get(2).ItemID() != "single-link" {
		t.Error("reset should restore the seed layout")
	}
}

func TestHandleSearchURL(t *testing.T) {
	sess, cfg := testSetup(t)
	h := NewHandlers(sess, cfg)
	ctx := context.Background()

	result, _ := h.HandleSearchURL(ctx, makeRequest(map[string]any{"query": "go modules"}))
	if got := parseOutput(t, result)["url"]; got != "https://www.google.com/search?q=go%20modules" {
		t.Errorf("url = %v", got)
	}

	result, _ = h.HandleSearchURL(ctx, makeRequest(map[string]any{"query": "go", "engine": "duckduckgo"}))
	if got := parseOutput(t, result)["url"]; got != "https://duckduckgo.com/?q=go" {
		t.Errorf("url = %v", got)
	}

	result, _ = h.HandleSearchURL(ctx, makeRequest(map[string]any{"query": "  "}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleSearchURL(ctx, makeRequest(map[string]any{"query": "go", "engine": "lycos"}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	sess, cfg := testSetup(t)

	s := NewServer(sess, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := AllToolNames()
	if len(expectedTools) != 17 {
		t.Fatalf("registry size = %d, want 17", len(expectedTools))
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	sess, cfg := testSetup(t)

	cfg.DisabledTools = []string{"desktop_reset", "desktop_import", "desktop_import"}
	tools := NewServer(sess, cfg, "test").ListTools()

	if len(tools) != 15 {
		t.Errorf("registered tool count = %d, want 15", len(tools))
	}
	for _, name := range []string{"desktop_reset", "desktop_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	sess, cfg := testSetup(t)

	cfg.DisabledTypes = []string{"folder", "search"}
	tools := NewServer(sess, cfg, "test").ListTools()

	if len(tools) != 11 {
		t.Errorf("registered tool count = %d, want 11", len(tools))
	}
	for name := range tools {
		if !strings.HasPrefix(name, "desktop_") {
			t.Errorf("tool %q should be disabled by type", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	sess, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	if tools := NewServer(sess, cfg, "test").ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabled(t *testing.T) {
	if got := ValidateDisabledTools([]string{"desktop_show", "capsule_store"}); len(got) != 1 || got[0] != "capsule_store" {
		t.Errorf("ValidateDisabledTools = %v", got)
	}
	if got := ValidateDisabledTools(nil); len(got) != 0 {
		t.Errorf("ValidateDisabledTools(nil) = %v", got)
	}
	if got := ValidateDisabledTypes([]string{"folder", "capsule"}); len(got) != 1 || got[0] != "capsule" {
		t.Errorf("ValidateDisabledTypes = %v", got)
	}
	if got := GetTypeForTool("folder_extract"); got != "folder" {
		t.Errorf("GetTypeForTool = %q", got)
	}
	if got := GetTypeForTool("noprefix"); got != "" {
		t.Errorf("GetTypeForTool(noprefix) = %q", got)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	err := errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied"))
	err.Details = map[string]any{"path": "/tmp/secret.db"}
	r := errorResult(err)
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("import: %w", errors.NewFileNotFound("/x.json"))

	errObj := errorObject(t, errorResult(wrapped))
	if errObj["code"] != string(errors.ErrFileNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrFileNotFound)
	}
	if msg := errObj["message"].(string); !strings.Contains(msg, "import:") {
		t.Errorf("message should contain wrapper context, got: %s", msg)
	}
	if _, ok := errObj["details"]; !ok {
		t.Error("expected details for non-internal errors")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != "INTERNAL" || errObj["message"] != "an internal error occurred" {
		t.Errorf("errObj = %v", errObj)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	return payload["error"].(map[string]any)
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error %s, got success: %s", expectedCode, extractErrorMessage(result))
		return
	}
	if code, _ := errorObject(t, result)["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
