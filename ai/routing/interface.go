// Package routing classifies free-form user input into one of a closed set
// of numbered options: the main menu intents, or the task view filters.
package routing

import (
	"context"
	"strconv"
	"strings"
)

// IntentClassifier handles intent classification only.
type IntentClassifier interface {
	// Classify maps utterance onto options. It never fails: model errors and
	// unusable replies come back as an unrecognized Classification.
	Classify(ctx context.Context, utterance string, options OptionSet) Classification

	// ClassifyIntent classifies utterance against the main menu.
	ClassifyIntent(ctx context.Context, utterance string) Intent
}

// Intent represents the type of user intent.
type Intent string

const (
	IntentViewTasks  Intent = "view_tasks"
	IntentAddTask    Intent = "add_task"
	IntentMarkDone   Intent = "mark_done"
	IntentDeleteTask Intent = "delete_task"
	IntentEditTask   Intent = "edit_task"
	IntentUnknown    Intent = "unknown"
)

// Status says whether the user was clear enough to pick an option.
type Status string

const (
	StatusSpecific  Status = "specific"
	StatusAmbiguous Status = "ambiguous"
)

// Classification is the result of every classifier call.
// Code is 0 when no option was picked.
type Classification struct {
	Status  Status `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Recognized reports whether an option was picked.
func (c Classification) Recognized() bool {
	return c.Status == StatusSpecific && c.Code > 0
}

// Unrecognized is the result for input matching no option.
var Unrecognized = Classification{Status: StatusSpecific}

// Option is one numbered choice.
type Option struct {
	Code    int
	Label   string
	Aliases []string
}

// OptionSet is a closed, numbered set of choices.
type OptionSet struct {
	Name string
	// Subject describes what the user is choosing, for the prompt.
	Subject string
	// Structured asks the model for a {status, message, choice} object so
	// vague input can be reported as ambiguous with a clarifying message.
	Structured bool
	Options    []Option
}

// Contains reports whether code names an option of the set.
func (s OptionSet) Contains(code int) bool {
	for _, o := range s.Options {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Label returns the label of code, or "" when it is not in the set.
func (s OptionSet) Label(code int) string {
	for _, o := range s.Options {
		if o.Code == code {
			return o.Label
		}
	}
	return ""
}

// Render lists the options as "N. Label" lines.
func (s OptionSet) Render() string {
	var sb strings.Builder
	for i, o := range s.Options {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strconv.Itoa(o.Code))
		sb.WriteString(". ")
		sb.WriteString(o.Label)
	}
	return sb.String()
}

// Main menu codes.
const (
	MenuViewTasks  = 1
	MenuAddTask    = 2
	MenuMarkDone   = 3
	MenuDeleteTask = 4
	MenuEditTask   = 5
)

// MenuOptions are the top-level things a user can ask for.
var MenuOptions = OptionSet{
	Name:    "menu",
	Subject: "what the user wants to do with their to-do list",
	Options: []Option{
		{Code: MenuViewTasks, Label: "View tasks", Aliases: []string{"view", "show tasks", "list tasks"}},
		{Code: MenuAddTask, Label: "Add a new task", Aliases: []string{"add", "add task", "new task"}},
		{Code: MenuMarkDone, Label: "Mark a task as done", Aliases: []string{"done", "mark done", "complete task"}},
		{Code: MenuDeleteTask, Label: "Delete a task", Aliases: []string{"delete", "delete task", "remove task"}},
		{Code: MenuEditTask, Label: "Edit a task", Aliases: []string{"edit", "edit task", "update task"}},
	},
}

// View filter codes.
const (
	ViewCompleted  = 1
	ViewIncomplete = 2
	ViewOverdue    = 3
	ViewUpcoming   = 4
	ViewAll        = 5
	ViewDateRange  = 6
)

// ViewOptions are the filters for listing tasks.
var ViewOptions = OptionSet{
	Name:       "view",
	Subject:    "which kind of tasks the user wants to see",
	Structured: true,
	Options: []Option{
		{Code: ViewCompleted, Label: "Completed", Aliases: []string{"completed tasks", "done", "finished"}},
		{Code: ViewIncomplete, Label: "Incomplete", Aliases: []string{"incomplete tasks", "pending", "not done", "open"}},
		{Code: ViewOverdue, Label: "Overdue", Aliases: []string{"overdue tasks", "late"}},
		{Code: ViewUpcoming, Label: "Upcoming", Aliases: []string{"upcoming tasks", "future"}},
		{Code: ViewAll, Label: "All tasks", Aliases: []string{"all", "everything"}},
		{Code: ViewDateRange, Label: "Tasks due in a date range", Aliases: []string{"date range", "range"}},
	},
}

// IntentFromMenuCode maps a main menu code to its intent.
func IntentFromMenuCode(code int) Intent {
	switch code {
	case MenuViewTasks:
		return IntentViewTasks
	case MenuAddTask:
		return IntentAddTask
	case MenuMarkDone:
		return IntentMarkDone
	case MenuDeleteTask:
		return IntentDeleteTask
	case MenuEditTask:
		return IntentEditTask
	default:
		return IntentUnknown
	}
}

// MenuCode returns the main menu code of the intent, or 0 for IntentUnknown.
func (i Intent) MenuCode() int {
	for _, o := range MenuOptions.Options {
		if IntentFromMenuCode(o.Code) == i {
			return o.Code
		}
	}
	return 0
}
