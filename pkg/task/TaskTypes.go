package task

import "sync"


type TaskStatus string

const (
	Waiting TaskStatus = "WAITING"
	Running TaskStatus = "RUNNING"
	Done TaskStatus = "DONE"
	Failed TaskStatus = "FAILED"
)

// Task is an opaque unit of work. WorkerId is set iff Status is Running,
// Lamport records the logical time of the last status change.
type Task struct {
	Id string `json:"id"`
	ClientId string `json:"clientId"`
	Payload string `json:"payload"`
	Status TaskStatus `json:"status"`
	WorkerId string `json:"workerId,omitempty"`
	Lamport uint64 `json:"lamport"`
}

type TaskStore struct {
	mutex sync.Mutex
	ordered []string
	tasks map[string]*Task
}
