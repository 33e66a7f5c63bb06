package extract

import (
	"strings"
	"time"
)

const extractTaskTemplate = `Today is {today}.

You are an expert AI assistant that extracts structured data from text.

Your job is to extract two things:
1. Task name
2. Task due date

You MUST return a VALID JSON in this exact format:

{
    "name": "task name here",
    "date": "YYYY-MM-DD"
}

IMPORTANT:
- Understand dates in ANY FORMAT: "2025/06/05", "06/05/2025", "next Monday",
  "tomorrow", "in two weeks", "on July 1st", "this Friday", "next week", "next month".
- Normalize ALL dates to "YYYY-MM-DD" using the current date (Today is {today}).
- If no date is mentioned, set "date" to "None".
- Vague tasks like "add a task" or "create a task" are not titles. Only consider real
  task descriptions as titles. If not, return "None" as name.

Here is the sentence:
"{user_input}"

Now return ONLY the JSON
`

const extractReferenceTemplate = `You are an expert AI assistant. The user wants to select one of their tasks.
Extract EITHER the TASK ID (number) OR the TASK TITLE (string) from this command:
"{user_input}"
Return a VALID JSON in this exact format:
{
    "task_id": 123,
    "task_title": "..."
}
IMPORTANT:
- If the user did not say a task ID, set "task_id" to null.
- If the user did not say a title, set "task_title" to null.
- If both are mentioned, return both.
Now return ONLY the JSON.
`

const extractEditReferenceTemplate = `Today is {today}.
You are an expert AI assistant. The user wants to select a task to edit.
Extract EITHER the TASK ID (number) OR the TASK TITLE (string) from this command:
"{user_input}"
Return a VALID JSON in this exact format:
{
    "task_id": 123,
    "task_title": "..."
}
IMPORTANT:
- If the user did not say a task ID, set "task_id" to null.
- If the user did not say a title, set "task_title" to null.
- If both are mentioned, return both.
- Vague phrases like "edit a task", "edit a title", "change a due date" or "change the title"
  are not titles. Only consider real task descriptions as titles. If not, return null as title.
Now return ONLY the JSON.
`

const extractEditTemplate = `Today is {today}.

You are an expert AI assistant that helps update tasks. The user gave you a sentence
describing what they want to change about a task.

Extract the following from the sentence:
- New task title (if they want to change it)
- New due date (if they want to change it)

Return this JSON format exactly:
{
    "title": "new title here or null",
    "due_date": "YYYY-MM-DD or null"
}

If the user does not want to change a field, return null for it.

Now process this sentence:
"{user_input}"

Return ONLY the JSON.
`

const extractDateRangeTemplate = `Today is {today}.

You are an expert AI assistant. The user wants to see the tasks due between two dates.

Extract the first and the last day of the range from this sentence:
"{user_input}"

Return this JSON format exactly:
{
    "start_date": "YYYY-MM-DD or null",
    "end_date": "YYYY-MM-DD or null"
}

Normalize ALL dates to "YYYY-MM-DD" using the current date (Today is {today}).
If the user mentions a single day, use it for both fields.
If a date is not mentioned, return null for it.

Return ONLY the JSON.
`

func buildPrompt(schema Schema, utterance string, today time.Time) string {
	return strings.NewReplacer(
		"{today}", today.Format("2006-01-02"),
		"{user_input}", utterance,
	).Replace(schema.template)
}
