package mcp

import "github.com/mark3labs/mcp-go/mcp"

var showToolDef = mcp.NewTool("desktop_show",
	mcp.WithDescription("List the occupied desktop slots with their links and folders, plus edit-mode, open folder and pending delete state."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var addLinkToolDef = mcp.NewTool("desktop_add_link",
	mcp.WithDescription("Create a link in the first empty desktop slot. Fails with GRID_FULL when all 24 slots are taken."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Display title")),
	mcp.WithString("url", mcp.Required(), mcp.Description("Destination; https:// is added when no scheme is given")),
	mcp.WithString("icon", mcp.Description("Glyph name (Compass, Map, Scroll, Sword, ShoppingBag, Youtube, Github, Code, Mail, Calendar, Image, Music)")),
)

var addFolderToolDef = mcp.NewTool("desktop_add_folder",
	mcp.WithDescription("Create an empty folder in the first empty desktop slot."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Display title")),
	mcp.WithString("size", mcp.Enum("2x2", "3x3"), mcp.Description("Display size, default 3x3")),
)

var swapToolDef = mcp.NewTool("desktop_swap",
	mcp.WithDescription("Exchange the contents of two desktop slots. Out-of-range or equal slots change nothing."),
	mcp.WithNumber("a", mcp.Required(), mcp.Description("First slot (0-23)")),
	mcp.WithNumber("b", mcp.Required(), mcp.Description("Second slot (0-23)")),
)

var dropToolDef = mcp.NewTool("desktop_drop",
	mcp.WithDescription("Drop the item at source onto target as a drag release would: a link dropped on a folder moves into it, anything else swaps."),
	mcp.WithNumber("source", mcp.Required(), mcp.Description("Dragged slot")),
	mcp.WithNumber("target", mcp.Required(), mcp.Description("Slot released on")),
)

var deleteToolDef = mcp.NewTool("desktop_delete",
	mcp.WithDescription("Ask to delete the item in a desktop slot. Nothing is removed until desktop_confirm_delete."),
	mcp.WithNumber("slot", mcp.Required(), mcp.Description("Desktop slot")),
)

var confirmDeleteToolDef = mcp.NewTool("desktop_confirm_delete",
	mcp.WithDescription("Carry out the pending delete request."),
	mcp.WithDestructiveHintAnnotation(true),
)

var cancelDeleteToolDef = mcp.NewTool("desktop_cancel_delete",
	mcp.WithDescription("Discard the pending delete request."),
)

var exportToolDef = mcp.NewTool("desktop_export",
	mcp.WithDescription("Write the desktop layout to a JSON file. Defaults to ~/.perch/exports/desktop-<timestamp>.json."),
	mcp.WithString("path", mcp.Description("Output .json path inside an allowed directory")),
	mcp.WithString("name", mcp.Description("Name used in the default file name")),
)

var importToolDef = mcp.NewTool("desktop_import",
	mcp.WithDescription("Replace the desktop with a layout read from a JSON export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Input .json path inside an allowed directory")),
	mcp.WithDestructiveHintAnnotation(true),
)

var resetToolDef = mcp.NewTool("desktop_reset",
	mcp.WithDescription("Replace the desktop with the default layout."),
	mcp.WithDestructiveHintAnnotation(true),
)

var folderShowToolDef = mcp.NewTool("folder_show",
	mcp.WithDescription("List the links of a folder, including links hidden by its current size."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var folderReorderToolDef = mcp.NewTool("folder_reorder",
	mcp.WithDescription("Swap two links inside a folder by index."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	mcp.WithNumber("from", mcp.Required(), mcp.Description("First link index")),
	mcp.WithNumber("to", mcp.Required(), mcp.Description("Second link index")),
)

var folderResizeToolDef = mcp.NewTool("folder_resize",
	mcp.WithDescription("Set a folder's display size. Without size, toggles between 2x2 and 3x3. Links are never dropped."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	mcp.WithString("size", mcp.Enum("2x2", "3x3"), mcp.Description("Target size")),
)

var folderExtractToolDef = mcp.NewTool("folder_extract",
	mcp.WithDescription("Move a link out of a folder into the first empty desktop slot. Fails with DESKTOP_FULL when there is none."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Link index in the folder")),
)

var folderDeleteLinkToolDef = mcp.NewTool("folder_delete_link",
	mcp.WithDescription("Ask to delete a link inside a folder. Nothing is removed until desktop_confirm_delete."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	mcp.WithString("link_id", mcp.Required(), mcp.Description("Link id")),
)

var searchURLToolDef = mcp.NewTool("search_url",
	mcp.WithDescription("Build the results URL for a web search."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search terms")),
	mcp.WithString("engine", mcp.Enum("google", "bing", "yandex", "duckduckgo"), mcp.Description("Engine, default from config")),
	mcp.WithReadOnlyHintAnnotation(true),
)
