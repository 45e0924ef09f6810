package domain

// Task is the single entity tracked by the service.
// ID is assigned by storage on insert and never changes afterwards.
type Task struct {
	ID          int64
	Title       string
	Description *string
	IsCompleted bool
}

// TaskInput is the full set of mutable fields of a task.
// Create and update both take a TaskInput; update replaces every field.
type TaskInput struct {
	Title       string
	Description *string
	IsCompleted bool
}

// NewTaskInput builds a TaskInput from optional request fields, filling the
// defaults: an omitted description stays absent and an omitted completion
// flag is false. Update relies on this to reset omitted fields.
func NewTaskInput(title *string, description *string, isCompleted *bool) (TaskInput, error) {
	if title == nil {
		return TaskInput{}, NewValidationError("title", "required field", ErrEmptyTitle)
	}

	input := TaskInput{
		Title:       *title,
		Description: description,
	}
	if isCompleted != nil {
		input.IsCompleted = *isCompleted
	}
	return input, nil
}

// Apply overwrites every mutable field of t with the input. The id is left untouched.
func (in TaskInput) Apply(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.IsCompleted = in.IsCompleted
}

// NewTask returns an unsaved task (ID 0) carrying the input fields.
func (in TaskInput) NewTask() *Task {
	t := &Task{}
	in.Apply(t)
	return t
}
