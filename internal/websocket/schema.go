package websocket

import (
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/scoring"
	"github.com/stemsi/mockprep-backend/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect   Action = "select"
	ActionGoTo     Action = "goto"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionFinish   Action = "finish"
	ActionPing     Action = "ping"
)

// RequestPayload carries any client action. Fields unused by an action are ignored.
type RequestPayload struct {
	Action Action          `json:"action"`
	Choice model.ChoiceKey `json:"choice,omitempty"`
	Index  *int            `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventFinished Event = "finished"
	EventPong     Event = "pong"
)

// SnapshotResponse is pushed every tick and after every action.
type SnapshotResponse struct {
	Event    Event            `json:"event"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// FinishedResponse is the last message of a stream.
type FinishedResponse struct {
	Event    Event            `json:"event"`
	Result   scoring.Result   `json:"result"`
	Snapshot session.Snapshot `json:"snapshot"`
	Warnings []string         `json:"warnings,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
