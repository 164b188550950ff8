package contract

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type CapabilityName string

const (
	CapabilityResearch  CapabilityName = "research"
	CapabilityTailor    CapabilityName = "tailor"
	CapabilityJobSearch CapabilityName = "job_search"
)

// Message is one entry in a conversation thread. Order is append-only;
// ID is assigned when the message is created and never changes.
type Message struct {
	ID         string            `json:"id,omitempty"`
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	Capability CapabilityName    `json:"capability,omitempty"` // set on tool-result messages
	Meta       map[string]string `json:"meta,omitempty"`
}

// JobRecord is the wire shape persisted to user_jobs and rendered in the
// jobs table payload. MatchRating is an integer in [0,5]; records outside
// that range are dropped at extraction, never clamped.
type JobRecord struct {
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	MatchRating int    `json:"match_rating"`
	Link        string `json:"link"`
}

// CapabilityRequest is the uniform input every capability receives.
type CapabilityRequest struct {
	Request     string `json:"request"`
	UserContext string `json:"user_context"`
	UserID      string `json:"user_id,omitempty"`
}

// CapabilityResult is the uniform shape every capability returns: free-form
// text plus, for the job-search capability, a typed list of job records.
type CapabilityResult struct {
	Text string      `json:"text"`
	Jobs []JobRecord `json:"jobs,omitempty"`
}

// DelegationResult is what a full delegation pass produces: the final reply
// text, any typed records surfaced along the way, and the tool-result
// transcript accumulated while capabilities ran.
type DelegationResult struct {
	Text       string
	Jobs       []JobRecord
	Transcript []Message
}

const UIPayloadTypeJobsTable = "jobs_table"

// UIPayload annotates a response message with structured data for rendering.
// It never alters the text content of the message it correlates to.
type UIPayload struct {
	Type      string        `json:"type"`
	Data      UIPayloadData `json:"data"`
	MessageID string        `json:"correlated_message_id"`
}

type UIPayloadData struct {
	Jobs []JobRecord `json:"jobs"`
}

// TurnRequest is the exposed turn invocation boundary: one new user message
// plus optional identity metadata. Identity may also ride on Message.Meta
// under the "user_id" / "thread_id" keys.
type TurnRequest struct {
	Message  Message
	UserID   string
	ThreadID string
}

// TurnResponse is the final assistant message plus zero or one UI payload.
type TurnResponse struct {
	Message Message
	Payload *UIPayload
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	MetaUserID   = "user_id"
	MetaThreadID = "thread_id"
)

// NoUserContext is the sentinel substituted when the user-context fetch
// fails or returns nothing. Context loading never fails a turn.
const NoUserContext = "No user context available"
