package mcp

import (
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"desktop", "folder", "search"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"desktop_show": {
		def:     showToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShow },
	},
	"desktop_add_link": {
		def:     addLinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddLink },
	},
	"desktop_add_folder": {
		def:     addFolderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddFolder },
	},
	"desktop_swap": {
		def:     swapToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSwap },
	},
	"desktop_drop": {
		def:     dropToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDrop },
	},
	"desktop_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"desktop_confirm_delete": {
		def:     confirmDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleConfirmDelete },
	},
	"desktop_cancel_delete": {
		def:     cancelDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCancelDelete },
	},
	"desktop_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"desktop_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"desktop_reset": {
		def:     resetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReset },
	},
	"folder_show": {
		def:     folderShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolderShow },
	},
	"folder_reorder": {
		def:     folderReorderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolderReorder },
	},
	"folder_resize": {
		def:     folderResizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolderResize },
	},
	"folder_extract": {
		def:     folderExtractToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolderExtract },
	},
	"folder_delete_link": {
		def:     folderDeleteLinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolderDeleteLink },
	},
	"search_url": {
		def:     searchURLToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearchURL },
	},
}

// AllToolNames returns a sorted list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "folder_resize" → "folder").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Perch tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(sess *ops.Session, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"perch",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(sess, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(sess *ops.Session, cfg *config.Config, version string) error {
	s := NewServer(sess, cfg, version)
	return server.ServeStdio(s)
}
