package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/mocks"
)

var today = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func allSchemas() []Schema {
	return []Schema{TaskSchema, ReferenceSchema, EditReferenceSchema, EditFieldsSchema, DateRangeSchema}
}

func TestExtract_KeysAlwaysPresent(t *testing.T) {
	replies := []struct {
		name string
		llm  *mocks.MockLLM
	}{
		{"model error", mocks.NewMockLLM().WithDefaultError(errors.New("boom"))},
		{"prose", mocks.NewMockLLM().WithDefaultResponse("Sorry, I cannot help with that.")},
		{"broken json", mocks.NewMockLLM().WithDefaultResponse(`{"name": "walk dog", `)},
		{"array", mocks.NewMockLLM().WithDefaultResponse(`["walk dog"]`)},
		{"empty object", mocks.NewMockLLM().WithDefaultResponse(`{}`)},
	}
	for _, r := range replies {
		for _, schema := range allSchemas() {
			t.Run(r.name+"/"+schema.Name, func(t *testing.T) {
				record := NewExtractor(r.llm).Extract(context.Background(), "walk the dog", schema, today)
				require.Len(t, record, len(schema.Fields))
				for _, f := range schema.Fields {
					v, ok := record[f.Name]
					assert.True(t, ok, "field %s missing", f.Name)
					assert.Nil(t, v)
				}
			})
		}
	}
}

func TestExtract_NilModelAndEmptyInput(t *testing.T) {
	record := NewExtractor(nil).Extract(context.Background(), "walk the dog", TaskSchema, today)
	assert.False(t, record.Has(FieldName))
	assert.False(t, record.Has(FieldDate))

	m := mocks.NewMockLLM()
	record = NewExtractor(m).Extract(context.Background(), "  ", TaskSchema, today)
	assert.False(t, record.Has(FieldName))
	assert.Equal(t, 0, m.CallCount())
}

func TestExtract_Task(t *testing.T) {
	m := mocks.NewMockLLM().
		WithResponse("```json\n{\"name\": \"Walk dog\", \"date\": \"tomorrow\"}\n```", "walk dog tomorrow").
		WithResponse(`Here you go: {"name": "Pay rent", "date": "None"}`, "pay rent").
		WithResponse(`{"name": "add a task", "date": "2026/04/01"}`, "add a task for april").
		WithResponse(`{"name": "Call mom", "date": "whenever"}`, "call mom whenever")
	ex := NewExtractor(m)
	ctx := context.Background()

	record := ex.Extract(ctx, "walk dog tomorrow", TaskSchema, today)
	name, _ := record.Get(FieldName)
	date, _ := record.Get(FieldDate)
	assert.Equal(t, "Walk dog", name)
	assert.Equal(t, "2026-03-11", date)

	record = ex.Extract(ctx, "pay rent", TaskSchema, today)
	assert.True(t, record.Has(FieldName))
	assert.False(t, record.Has(FieldDate))

	record = ex.Extract(ctx, "add a task for april", TaskSchema, today)
	assert.False(t, record.Has(FieldName), "vague phrase is not a title")
	date, _ = record.Get(FieldDate)
	assert.Equal(t, "2026-04-01", date)

	record = ex.Extract(ctx, "call mom whenever", TaskSchema, today)
	date, ok := record.Get(FieldDate)
	assert.True(t, ok)
	assert.Equal(t, "whenever", date, "unreadable dates are kept for strict validation")
}

func TestExtract_PromptCarriesTodayAndInput(t *testing.T) {
	m := mocks.NewMockLLM()
	NewExtractor(m).Extract(context.Background(), "buy milk next friday", TaskSchema, today)
	require.Len(t, m.Prompts(), 1)
	assert.Contains(t, m.Prompts()[0], "Today is 2026-03-10.")
	assert.Contains(t, m.Prompts()[0], `"buy milk next friday"`)
}

func TestExtract_Reference(t *testing.T) {
	m := mocks.NewMockLLM().
		WithResponse(`{"task_id": 12, "task_title": null}`, "task 12").
		WithResponse(`{"task_id": "#7", "task_title": "Dentist"}`, "dentist 7").
		WithResponse(`{"task_id": null, "task_title": "edit a task"}`, "I want to edit a task")
	ex := NewExtractor(m)
	ctx := context.Background()

	record := ex.Extract(ctx, "task 12", ReferenceSchema, today)
	id, ok := record.Int32(FieldTaskID)
	assert.True(t, ok)
	assert.Equal(t, int32(12), id)
	assert.False(t, record.Has(FieldTaskTitle))

	record = ex.Extract(ctx, "dentist 7", ReferenceSchema, today)
	id, _ = record.Int32(FieldTaskID)
	assert.Equal(t, int32(7), id)
	title, _ := record.Get(FieldTaskTitle)
	assert.Equal(t, "Dentist", title)

	record = ex.Extract(ctx, "I want to edit a task", EditReferenceSchema, today)
	assert.False(t, record.Has(FieldTaskID))
	assert.False(t, record.Has(FieldTaskTitle))
}

func TestExtract_EditFieldsAndRange(t *testing.T) {
	m := mocks.NewMockLLM().
		WithResponse(`{"title": null, "due_date": "2026-05-01"}`, "push it to may first").
		WithResponse(`{"start_date": "today", "end_date": "in 2 weeks"}`, "the next two weeks")
	ex := NewExtractor(m)
	ctx := context.Background()

	record := ex.Extract(ctx, "push it to may first", EditFieldsSchema, today)
	assert.False(t, record.Has(FieldTitle))
	due, _ := record.Get(FieldDueDate)
	assert.Equal(t, "2026-05-01", due)

	record = ex.Extract(ctx, "the next two weeks", DateRangeSchema, today)
	start, _ := record.Get(FieldStartDate)
	end, _ := record.Get(FieldEndDate)
	assert.Equal(t, "2026-03-10", start)
	assert.Equal(t, "2026-03-24", end)
}

func TestRecord_Int32(t *testing.T) {
	v := func(s string) *string { return &s }
	r := Record{"a": v("0"), "b": v("abc"), "c": nil, "d": v("99999999999")}
	for _, k := range []string{"a", "b", "c", "d", "missing"} {
		_, ok := r.Int32(k)
		assert.False(t, ok, k)
	}
}
