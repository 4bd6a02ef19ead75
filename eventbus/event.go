package eventbus

import "time"

// Type tags the variant of an Event, mirroring the teacher's Event/Response
// split but flattened into a single tagged struct since every variant here
// is small and JSON-serialized to stream subscribers.
type Type string

// Recognized event types.
const (
	TypeConnectionEstablished   Type = "connection_established"
	TypeCollaborationStarted    Type = "collaboration_started"
	TypeAgentProgress           Type = "agent_progress"
	TypePredictorProgress       Type = "predictor_progress"
	TypePredictorCompleted      Type = "predictor_completed"
	TypePredictorError          Type = "predictor_error"
	TypeFusionStarted           Type = "fusion_started"
	TypeFusionProgress          Type = "fusion_progress"
	TypeFusionCompleted         Type = "fusion_completed"
	TypeRecommendationCompleted Type = "recommendation_completed"
	TypeError                   Type = "error"
	TypeKeepAlive               Type = "keep_alive"
)

// Status is the lifecycle stage of an agent_progress event.
type Status string

// Recognized agent_progress statuses.
const (
	StatusStarting  Status = "starting"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// terminal reports whether an event of this type ends a session's stream.
func (t Type) terminal() bool {
	return t == TypeRecommendationCompleted || t == TypeError
}

// Event is a single, immutable record in a session's ordered stream.
// Produced once, consumed by zero or more subscribers, never mutated after
// Publish returns.
type Event struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"sessionId"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`

	Agent      string  `json:"agent,omitempty"`
	Status     Status  `json:"status,omitempty"`
	Progress   float64 `json:"progress,omitempty"`
	Message    string  `json:"message,omitempty"`

	ErrorKind    string `json:"errorKind,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	// Result carries the terminal payload for recommendation_completed
	// (a fuser.FusedResult value); other event types leave it nil. Left
	// untyped here to avoid an import cycle with the fuser package; callers
	// type-assert.
	Result any `json:"result,omitempty"`
}

// clone returns a shallow copy of e, safe to hand to a different
// subscriber channel than the one e was built for.
func (e *Event) clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// NewEvent builds a bare event of the given type for the given session. Seq
// and Timestamp are assigned by the Session at publish time. Named distinctly
// from the EventBus constructor in bus.go, which also needs the package-level
// name New.
func NewEvent(sessionID string, typ Type) *Event {
	return &Event{SessionID: sessionID, Type: typ}
}

// NewAgentProgress builds an agent_progress event.
func NewAgentProgress(sessionID, agent string, status Status, progress float64, message string) *Event {
	e := NewEvent(sessionID, TypeAgentProgress)
	e.Agent = agent
	e.Status = status
	e.Progress = progress
	e.Message = message
	return e
}

// NewPredictorProgress builds a predictor_progress event.
func NewPredictorProgress(sessionID, predictor string, progress float64, message string) *Event {
	e := NewEvent(sessionID, TypePredictorProgress)
	e.Agent = predictor
	e.Progress = progress
	e.Message = message
	return e
}

// NewPredictorCompleted builds a predictor_completed event.
func NewPredictorCompleted(sessionID, predictor string) *Event {
	e := NewEvent(sessionID, TypePredictorCompleted)
	e.Agent = predictor
	e.Progress = 1
	return e
}

// NewPredictorError builds a predictor_error event.
func NewPredictorError(sessionID, predictor, kind, message string) *Event {
	e := NewEvent(sessionID, TypePredictorError)
	e.Agent = predictor
	e.ErrorKind = kind
	e.ErrorMessage = message
	return e
}

// NewError builds a terminal error event.
func NewError(sessionID, kind, message string) *Event {
	e := NewEvent(sessionID, TypeError)
	e.ErrorKind = kind
	e.ErrorMessage = message
	return e
}

// NewRecommendationCompleted builds the terminal success event.
func NewRecommendationCompleted(sessionID string, result any) *Event {
	e := NewEvent(sessionID, TypeRecommendationCompleted)
	e.Result = result
	return e
}
