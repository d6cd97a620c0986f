package models

// Intent classifies what the user wants the assistant to do.
type Intent string

const (
	IntentCreateIssue  Intent = "create_issue"
	IntentUpdateIssue  Intent = "update_issue"
	IntentQueryIssue   Intent = "query_issue"
	IntentSearchIssues Intent = "search_issues"
	IntentHelp         Intent = "help"
	IntentUnknown      Intent = "unknown"
)

// IssueType is the Jira work type. This project has no Bug type; bug-like
// requests map to Task.
type IssueType string

const (
	IssueTypeTask  IssueType = "Task"
	IssueTypeStory IssueType = "Story"
	IssueTypeEpic  IssueType = "Epic"
)

// Priority is the Jira priority name.
type Priority string

const (
	PriorityLowest  Priority = "Lowest"
	PriorityLow     Priority = "Low"
	PriorityMedium  Priority = "Medium"
	PriorityHigh    Priority = "High"
	PriorityHighest Priority = "Highest"
)

// IssueStatus is the Jira workflow status name.
type IssueStatus string

const (
	StatusToDo       IssueStatus = "To Do"
	StatusInProgress IssueStatus = "In Progress"
	StatusInReview   IssueStatus = "In Review"
	StatusDone       IssueStatus = "Done"
)

// IssueDraft is the structured issue data accumulated across conversation
// turns. The zero value of a field means "unset"; enum fields hold the
// display name Jira expects.
type IssueDraft struct {
	IssueType   IssueType   `json:"issue_type,omitempty"`
	Priority    Priority    `json:"priority,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Assignee    string      `json:"assignee,omitempty"`
	ProjectKey  string      `json:"project_key,omitempty"`
	Labels      []string    `json:"labels,omitempty"`
	IssueKey    string      `json:"issue_key,omitempty"` // for updates/queries
	Status      IssueStatus `json:"status,omitempty"`
	DueDate     string      `json:"due_date,omitempty"`   // YYYY-MM-DD
	StartDate   string      `json:"start_date,omitempty"` // YYYY-MM-DD
	ParentKey   string      `json:"parent_key,omitempty"` // e.g. TJ-3
}

// Clone returns a deep copy of the draft.
func (d *IssueDraft) Clone() *IssueDraft {
	if d == nil {
		return &IssueDraft{}
	}
	out := *d
	if d.Labels != nil {
		out.Labels = append([]string(nil), d.Labels...)
	}
	return &out
}

// AgentResponse is the engine's per-turn output contract. It is also the
// shape the intent extractor asks the LLM to produce, so the two stay in
// lockstep by construction.
//
// Invariant: ReadyForJira true implies MissingFields is empty and
// NextQuestion is unset.
type AgentResponse struct {
	Intent          Intent      `json:"intent"`
	Confidence      float64     `json:"confidence"`
	ExtractedData   *IssueDraft `json:"extracted_data"`
	MissingFields   []string    `json:"missing_fields"`
	NextQuestion    string      `json:"next_question,omitempty"`
	ReadyForJira    bool        `json:"ready_for_jira"`
	ResponseMessage string      `json:"response_message"`
	Error           string      `json:"error,omitempty"`
}

// ChatMessage is the payload of an inbound conversational task sent to the
// agent over A2A.
type ChatMessage struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// DispatchResult is the outcome of a tracker write operation (create,
// update, comment, attach).
type DispatchResult struct {
	Success  bool   `json:"success"`
	IssueKey string `json:"issue_key,omitempty"`
	IssueURL string `json:"issue_url,omitempty"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

// IssueDetails is a fetched issue flattened for display.
type IssueDetails struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Assignee    string `json:"assignee"`
	IssueType   string `json:"issue_type"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// IssueResult is the outcome of a single-issue lookup.
type IssueResult struct {
	Success bool          `json:"success"`
	Issue   *IssueDetails `json:"issue,omitempty"`
	Message string        `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// IssueSummary is one row of a search result.
type IssueSummary struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Assignee string `json:"assignee"`
	URL      string `json:"url"`
}

// SearchResult is the outcome of a JQL search.
type SearchResult struct {
	Success bool           `json:"success"`
	Total   int            `json:"total"`
	Issues  []IssueSummary `json:"issues"`
	Message string         `json:"message"`
	Error   string         `json:"error,omitempty"`
}
