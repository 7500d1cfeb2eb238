package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cohabitat/assistant-core/internal/db"
	"github.com/cohabitat/assistant-core/internal/search"
	"github.com/cohabitat/assistant-core/pkg/models"
)

// DocumentSearcher is the retrieval surface the dispatcher needs.
// *search.Manager satisfies it.
type DocumentSearcher interface {
	SearchText(ctx context.Context, partyID uuid.UUID, query string, limit int) ([]models.RankedChunk, error)
}

// Dispatcher validates, authorizes, and executes tool calls for one
// authenticated (party, user) pair. It is built per conversation turn; every
// row it touches belongs to its party.
type Dispatcher struct {
	scope    Scope
	searcher DocumentSearcher
	tasks    db.TaskStore
	members  db.MemberReader
}

// New creates a dispatcher bound to the given scope.
func New(searcher DocumentSearcher, tasks db.TaskStore, members db.MemberReader, scope Scope) *Dispatcher {
	return &Dispatcher{
		scope:    scope,
		searcher: searcher,
		tasks:    tasks,
		members:  members,
	}
}

// Scope returns the (party, user) pair this dispatcher executes as.
func (d *Dispatcher) Scope() Scope { return d.scope }

// Dispatch runs a named tool with raw JSON arguments. Every outcome is a
// structured result; the orchestrator never sees a raw error, so a failed
// call can be explained to the user instead of crashing the turn.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) models.ToolResult {
	def, ok := catalog[name]
	if !ok {
		return models.Fail(models.ErrValidation, fmt.Sprintf("unknown tool %q", name))
	}

	args, err := validateArgs(def.Parameters, rawArgs)
	if err != nil {
		log.Debug().Str("tool", name).Err(err).Msg("Tool arguments rejected")
		return failureFrom(err)
	}

	var result models.ToolResult
	switch name {
	case ToolSearchDocuments:
		result = d.searchDocuments(ctx, args)
	case ToolCreateTask:
		result = d.createTask(ctx, args)
	case ToolUpdateTaskStatus:
		result = d.updateTaskStatus(ctx, args)
	case ToolListTasks:
		result = d.listTasks(ctx, args)
	case ToolAddTaskComment:
		result = d.addTaskComment(ctx, args)
	default:
		// catalog and switch go out of sync only by programmer error
		result = models.Fail(models.ErrValidation, fmt.Sprintf("unknown tool %q", name))
	}

	if !result.Success {
		log.Debug().
			Str("tool", name).
			Str("party_id", d.scope.PartyID.String()).
			Str("error", string(result.Error)).
			Msg("Tool call failed")
	}
	return result
}

// searchResult is the searchDocuments payload. found=false is a normal
// outcome the agent reports as "nothing found", not an error.
type searchResult struct {
	Found   bool                 `json:"found"`
	Results []models.RankedChunk `json:"results,omitempty"`
}

func (d *Dispatcher) searchDocuments(ctx context.Context, args map[string]string) models.ToolResult {
	results, err := d.searcher.SearchText(ctx, d.scope.PartyID, args["query"], search.DefaultLimit)
	if err != nil {
		return failureFrom(err)
	}

	if len(results) == 0 {
		return models.OK(searchResult{Found: false})
	}
	return models.OK(searchResult{Found: true, Results: results})
}

func (d *Dispatcher) createTask(ctx context.Context, args map[string]string) models.ToolResult {
	task := models.Task{
		PartyID:     d.scope.PartyID,
		CreatedBy:   d.scope.UserID,
		Title:       args["title"],
		Description: args["description"],
		Status:      models.TaskTodo,
		Priority:    models.PriorityMedium,
	}

	if priority, ok := args["priority"]; ok {
		task.Priority = models.TaskPriority(priority)
	}

	if due, ok := args["dueDate"]; ok {
		parsed, err := time.Parse("2006-01-02", due)
		if err != nil {
			return failureFrom(&ValidationError{Field: "dueDate", Reason: "must be a date in YYYY-MM-DD form"})
		}
		task.DueDate = &parsed
	}

	if role, ok := args["assignedTo"]; ok {
		assignee, err := ResolveAssignee(ctx, d.members, d.scope, models.AssigneeRole(role))
		if err != nil {
			return failureFrom(err)
		}
		// nil assignee means the party has no accepted co-owner; the
		// task is created unassigned rather than failing the call.
		task.AssignedTo = assignee
	}

	if err := d.tasks.CreateTask(ctx, &task); err != nil {
		return failureFrom(err)
	}
	return models.OK(map[string]any{"task": task})
}

func (d *Dispatcher) updateTaskStatus(ctx context.Context, args map[string]string) models.ToolResult {
	taskID, err := uuid.Parse(args["taskId"])
	if err != nil {
		return failureFrom(&ValidationError{Field: "taskId", Reason: "must be a UUID"})
	}

	status := models.TaskStatus(args["status"])
	task, err := d.tasks.UpdateTaskStatus(ctx, d.scope.PartyID, taskID, status, d.scope.UserID)
	if err != nil {
		return failureFrom(err)
	}
	return models.OK(map[string]any{"task": task})
}

// listResult is the listTasks payload: count plus summaries only, keeping
// the payload small for the model's context window.
type listResult struct {
	Count int                  `json:"count"`
	Tasks []models.TaskSummary `json:"tasks"`
}

func (d *Dispatcher) listTasks(ctx context.Context, args map[string]string) models.ToolResult {
	filter := models.TaskFilter{Status: args["status"]}

	switch args["assignedTo"] {
	case "", "all":
		// unfiltered
	case "self":
		userID := d.scope.UserID
		filter.AssignedTo = &userID
	case "coowner":
		coOwner, err := d.members.FindCoOwner(ctx, d.scope.PartyID, d.scope.UserID)
		if err != nil {
			return failureFrom(err)
		}
		if coOwner == nil {
			// no accepted co-owner: nothing can be assigned to one
			return models.OK(listResult{Count: 0, Tasks: []models.TaskSummary{}})
		}
		filter.AssignedTo = coOwner
	}

	tasks, err := d.tasks.ListTasks(ctx, d.scope.PartyID, filter)
	if err != nil {
		return failureFrom(err)
	}
	if tasks == nil {
		tasks = []models.TaskSummary{}
	}
	return models.OK(listResult{Count: len(tasks), Tasks: tasks})
}

func (d *Dispatcher) addTaskComment(ctx context.Context, args map[string]string) models.ToolResult {
	taskID, err := uuid.Parse(args["taskId"])
	if err != nil {
		return failureFrom(&ValidationError{Field: "taskId", Reason: "must be a UUID"})
	}

	comment, err := d.tasks.AddComment(ctx, d.scope.PartyID, taskID, d.scope.UserID, args["content"])
	if err != nil {
		return failureFrom(err)
	}
	return models.OK(map[string]any{"comment": comment})
}
