package extract

// Field is one key the model is asked to fill.
type Field struct {
	Name string
	// Date fields are normalized to YYYY-MM-DD.
	Date bool
}

// Schema describes one extraction: its fields, prompt and the phrases that
// are never real values.
type Schema struct {
	Name   string
	Fields []Field

	template string
	vague    []string
}

// Field names.
const (
	FieldName      = "name"
	FieldDate      = "date"
	FieldTaskID    = "task_id"
	FieldTaskTitle = "task_title"
	FieldTitle     = "title"
	FieldDueDate   = "due_date"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
)

var (
	// TaskSchema pulls a new task's title and due date out of a sentence.
	TaskSchema = Schema{
		Name:     "task",
		Fields:   []Field{{Name: FieldName}, {Name: FieldDate, Date: true}},
		template: extractTaskTemplate,
		vague: []string{
			"add a task", "add task", "create a task", "create task", "new task",
			"a new task", "add a new task", "a task", "task",
		},
	}

	// ReferenceSchema pulls a task id or title out of a command.
	ReferenceSchema = Schema{
		Name:     "reference",
		Fields:   []Field{{Name: FieldTaskID}, {Name: FieldTaskTitle}},
		template: extractReferenceTemplate,
		vague:    []string{"a task", "task", "the task", "my task"},
	}

	// EditReferenceSchema is ReferenceSchema for edits, where phrases about
	// the edit itself must not be taken as titles.
	EditReferenceSchema = Schema{
		Name:     "edit_reference",
		Fields:   []Field{{Name: FieldTaskID}, {Name: FieldTaskTitle}},
		template: extractEditReferenceTemplate,
		vague: []string{
			"a task", "task", "the task", "my task", "edit a task", "edit task",
			"edit a title", "edit the title", "change a due date", "change the due date",
			"change the title", "change a title", "update a task",
		},
	}

	// EditFieldsSchema pulls the new title and due date out of an edit request.
	EditFieldsSchema = Schema{
		Name:     "edit_fields",
		Fields:   []Field{{Name: FieldTitle}, {Name: FieldDueDate, Date: true}},
		template: extractEditTemplate,
		vague: []string{
			"change the title", "change the due date", "edit a task", "new title",
			"the title", "the due date",
		},
	}

	// DateRangeSchema pulls an inclusive date range out of a view request.
	DateRangeSchema = Schema{
		Name:     "date_range",
		Fields:   []Field{{Name: FieldStartDate, Date: true}, {Name: FieldEndDate, Date: true}},
		template: extractDateRangeTemplate,
	}
)
