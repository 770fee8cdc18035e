package wire

import "encoding/json"

import "github.com/sirgallo/conductor/pkg/task"


type MessageKind string

const (
	// client --> orchestrator
	Authenticate MessageKind = "AUTHENTICATE"
	SubmitTask MessageKind = "SUBMIT_TASK"
	QueryStatus MessageKind = "QUERY_STATUS"

	// orchestrator --> client
	AuthOk MessageKind = "AUTH_OK"
	AuthFail MessageKind = "AUTH_FAIL"
	TaskAccepted MessageKind = "TASK_ACCEPTED"
	StatusReply MessageKind = "STATUS_REPLY"

	// worker --> orchestrator
	RegisterWorker MessageKind = "REGISTER_WORKER"
	Heartbeat MessageKind = "HEARTBEAT"
	TaskDone MessageKind = "TASK_DONE"

	// orchestrator --> worker
	NewTask MessageKind = "NEW_TASK"

	// orchestrator --> standby
	SyncState MessageKind = "SYNC_STATE"
)

type Envelope struct {
	Kind MessageKind `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Token string `json:"token,omitempty"`
	Lamport uint64 `json:"lamport"`
}

// GlobalState is the payload of a SYNC_STATE envelope, a stable copy of
// everything the standby needs to take over.
type GlobalState struct {
	Tasks map[string]*task.Task `json:"tasks"`
	Workers []string `json:"workers"`
	Clock uint64 `json:"clock"`
}
