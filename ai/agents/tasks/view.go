package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/store"
)

const (
	msgWhichView     = "Which tasks would you like to see? Completed, Incomplete, Overdue, Upcoming, All, or a date range?"
	promptDateRange  = "Which dates? (e.g. 'from 2026-03-01 to 2026-03-15'): "
	msgNoDateRange   = "I couldn't tell which dates you meant."
	msgBadDateFormat = "Oops! That date format looks off. Use YYYY-MM-DD format please 🙏"
	msgNoTasks       = "No tasks found for this option."
	tasksHeader      = "--- TASKS ---"
)

// ViewTasks lists the user's tasks through one filter.
type ViewTasks struct {
	deps   Deps
	choice int
	filter store.TaskFilter
}

// NewViewTasks classifies which tasks the user wants to see. Vague requests
// get exactly one follow-up question; if that is vague too, all tasks are shown.
func NewViewTasks(ctx context.Context, deps Deps, utterance string, ch channels.Channel) (*ViewTasks, error) {
	result := deps.Classifier.Classify(ctx, utterance, routing.ViewOptions)
	if result.Message != "" {
		if err := ch.Output(ctx, result.Message); err != nil {
			return nil, err
		}
	}

	if !result.Recognized() {
		if result.Message == "" {
			if err := ch.Output(ctx, msgWhichView); err != nil {
				return nil, err
			}
		}
		reply, err := ch.Input(ctx, "")
		if err != nil {
			return nil, err
		}
		utterance = reply
		result = deps.Classifier.Classify(ctx, reply, routing.ViewOptions)
		if !result.Recognized() {
			result = routing.Classification{Status: routing.StatusSpecific, Code: routing.ViewAll}
		}
	}

	req := &ViewTasks{deps: deps, choice: result.Code}
	switch result.Code {
	case routing.ViewCompleted:
		done := true
		req.filter.Done = &done
	case routing.ViewIncomplete:
		done := false
		req.filter.Done = &done
	case routing.ViewOverdue:
		req.filter.Overdue = true
	case routing.ViewUpcoming:
		req.filter.Upcoming = true
	case routing.ViewDateRange:
		start, end, err := dateRange(ctx, deps, utterance, ch)
		if err != nil || start == "" {
			return nil, err
		}
		req.filter.StartDate, req.filter.EndDate = start, end
	}
	return req, nil
}

// dateRange extracts an inclusive range, asking once if the utterance has
// none. A single date is a one-day range. It returns "" after telling the
// user why no range could be used.
func dateRange(ctx context.Context, deps Deps, utterance string, ch channels.Channel) (string, string, error) {
	record := deps.Extractor.Extract(ctx, utterance, extract.DateRangeSchema, deps.today())
	if !record.Has(extract.FieldStartDate) && !record.Has(extract.FieldEndDate) {
		reply, err := ch.Input(ctx, promptDateRange)
		if err != nil {
			return "", "", err
		}
		record = deps.Extractor.Extract(ctx, reply, extract.DateRangeSchema, deps.today())
	}

	start, hasStart := record.Get(extract.FieldStartDate)
	end, hasEnd := record.Get(extract.FieldEndDate)
	switch {
	case !hasStart && !hasEnd:
		return "", "", ch.Output(ctx, msgNoDateRange)
	case !hasStart:
		start = end
	case !hasEnd:
		end = start
	}
	if !store.ValidDate(start) || !store.ValidDate(end) {
		return "", "", ch.Output(ctx, msgBadDateFormat)
	}
	if start > end {
		start, end = end, start
	}
	return start, end, nil
}

// Handle implements Request.
func (r *ViewTasks) Handle(ctx context.Context, ch channels.Channel) (bool, error) {
	list, err := r.deps.Store.ListTasks(ctx, r.deps.UserID, r.filter)
	if err != nil {
		return false, fmt.Errorf("list tasks: %w", err)
	}
	if len(list) == 0 {
		return true, ch.Output(ctx, msgNoTasks)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if err := ch.Output(ctx, tasksHeader); err != nil {
		return false, err
	}
	for _, task := range list {
		if err := ch.Output(ctx, FormatTask(task)); err != nil {
			return false, err
		}
	}
	return true, nil
}

// FormatTask renders one task line: "3. Walk dog (Due: 2026-03-12) - ❌".
func FormatTask(task *store.Task) string {
	status := "❌"
	if task.Done {
		status = "✅"
	}
	if task.DueDate == "" {
		return fmt.Sprintf("%d. %s - %s", task.ID, task.Title, status)
	}
	return fmt.Sprintf("%d. %s (Due: %s) - %s", task.ID, task.Title, task.DueDate, status)
}
