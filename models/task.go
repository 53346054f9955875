package models

// SourceMorgen is the integration id of Morgen-native tasks. External
// tasks carry the id of the integration that synced them ("linear",
// "notion", "todoist", ...).
const SourceMorgen = "morgen"

// Label is an opaque per-integration key/value pair attached to a task.
// Its meaning depends on the integration; LabelDef tables translate
// values into display strings.
type Label struct {
	ID    string `json:"id"`
	Value string `json:"value,omitempty"`
}

// Link is a single entry in a task's links map.
type Link struct {
	Href string `json:"href,omitempty"`
}

// Task is a task item from any source. IntegrationID defaults to
// SourceMorgen when the API omits it.
type Task struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title,omitempty"`
	Description        string          `json:"description,omitempty"`
	Progress           string          `json:"progress,omitempty"`
	Status             string          `json:"status,omitempty"`
	Priority           int             `json:"priority,omitempty"`
	Due                string          `json:"due,omitempty"`
	CreatedAt          string          `json:"createdAt,omitempty"`
	UpdatedAt          string          `json:"updatedAt,omitempty"`
	CompletedAt        string          `json:"completedAt,omitempty"`
	ParentID           string          `json:"parentId,omitempty"`
	Tags               []string        `json:"tags,omitempty"`
	TaskListID         string          `json:"taskListId,omitempty"`
	EstimatedDuration  string          `json:"estimatedDuration,omitempty"`
	IntegrationID      string          `json:"integrationId,omitempty"`
	AccountID          string          `json:"accountId,omitempty"`
	Labels             []Label         `json:"labels,omitempty"`
	Links              map[string]Link `json:"links,omitempty"`
	OccurrenceStart    string          `json:"occurrenceStart,omitempty"`
	Position           int             `json:"position,omitempty"`
	EarliestStart      string          `json:"earliestStart,omitempty"`
	DescriptionContent string          `json:"descriptionContentType,omitempty"`
}

// Source returns the task's integration id, defaulting to SourceMorgen.
func (t Task) Source() string {
	if t.IntegrationID == "" {
		return SourceMorgen
	}
	return t.IntegrationID
}

// LabelDefValue maps one opaque label value to a human-readable label.
type LabelDefValue struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// LabelDef is a per-integration label definition shipped alongside a task
// listing. It is scoped to the response that produced it and never
// persisted on its own.
type LabelDef struct {
	ID     string          `json:"id"`
	Label  string          `json:"label,omitempty"`
	Type   string          `json:"type,omitempty"`
	Values []LabelDefValue `json:"values,omitempty"`
}

// Space is a project/space record from an external task integration.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TaskListResponse is the compound result of an aggregated task listing.
type TaskListResponse struct {
	Tasks     []Task     `json:"tasks"`
	LabelDefs []LabelDef `json:"labelDefs,omitempty"`
	Spaces    []Space    `json:"spaces,omitempty"`
}

// TaskList is a task list (project/folder) for native tasks.
type TaskList struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Role        string `json:"role,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
	Position    int    `json:"position,omitempty"`
}

// Tag is a user-defined tag attachable to native tasks.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}
