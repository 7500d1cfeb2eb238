package tools

// Tool names. The catalog is a closed set: a requested name outside it is
// rejected before anything else happens.
const (
	ToolSearchDocuments  = "searchDocuments"
	ToolCreateTask       = "createTask"
	ToolUpdateTaskStatus = "updateTaskStatus"
	ToolListTasks        = "listTasks"
	ToolAddTaskComment   = "addTaskComment"
)

// Definition is the orchestrator-facing description of a tool. The model
// consumes the description and schema; this core only enforces the schema.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// catalog maps tool names to their parameter schemas. Arguments not
// described here are rejected; every schema forbids unknown fields.
var catalog = map[string]Definition{
	ToolSearchDocuments: {
		Name:        ToolSearchDocuments,
		Description: "Search the household's uploaded documents by meaning. Returns the most relevant passages with the document they came from. Finding nothing is a normal outcome.",
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"query"},
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Natural language search query"},
			},
		},
	},
	ToolCreateTask: {
		Name:        ToolCreateTask,
		Description: "Create a household task. assignedTo accepts the symbolic values 'self' and 'coowner'; an unresolvable co-owner leaves the task unassigned.",
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"title"},
			"properties": map[string]any{
				"title":       map[string]any{"type": "string", "description": "Short task title"},
				"description": map[string]any{"type": "string", "description": "Optional details"},
				"assignedTo":  map[string]any{"type": "string", "enum": []string{"self", "coowner"}, "description": "Who the task is for"},
				"priority":    map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}, "description": "Defaults to medium"},
				"dueDate":     map[string]any{"type": "string", "format": "date", "description": "Due date, YYYY-MM-DD"},
			},
		},
	},
	ToolUpdateTaskStatus: {
		Name:        ToolUpdateTaskStatus,
		Description: "Move a task to todo, in_progress, or done. Completing a task records who completed it and when.",
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"taskId", "status"},
			"properties": map[string]any{
				"taskId": map[string]any{"type": "string", "format": "uuid", "description": "Task identifier"},
				"status": map[string]any{"type": "string", "enum": []string{"todo", "in_progress", "done"}},
			},
		},
	},
	ToolListTasks: {
		Name:        ToolListTasks,
		Description: "List the household's tasks. By default completed tasks are excluded; pass status 'all' to include them.",
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"status":     map[string]any{"type": "string", "enum": []string{"todo", "in_progress", "done", "all"}},
				"assignedTo": map[string]any{"type": "string", "enum": []string{"self", "coowner", "all"}},
			},
		},
	},
	ToolAddTaskComment: {
		Name:        ToolAddTaskComment,
		Description: "Add a comment to a task. Comments are append-only and never modify the task itself.",
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"taskId", "content"},
			"properties": map[string]any{
				"taskId":  map[string]any{"type": "string", "format": "uuid", "description": "Task identifier"},
				"content": map[string]any{"type": "string", "description": "Comment text"},
			},
		},
	},
}

// Catalog returns the tool definitions in a stable order for the
// orchestrator to hand to the model.
func Catalog() []Definition {
	names := []string{
		ToolSearchDocuments,
		ToolCreateTask,
		ToolUpdateTaskStatus,
		ToolListTasks,
		ToolAddTaskComment,
	}
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, catalog[name])
	}
	return defs
}
