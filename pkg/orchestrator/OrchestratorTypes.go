package orchestrator

import "sync"
import "time"

import "github.com/jonboulle/clockwork"

import "github.com/sirgallo/conductor/pkg/auth"
import "github.com/sirgallo/conductor/pkg/lamport"
import "github.com/sirgallo/conductor/pkg/registry"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


type OrchestratorOpts struct {
	ClientPort int
	WorkerPort int

	StandbyAddress string
	ReconnectBackoff time.Duration
	HeartbeatTimeout time.Duration

	Credentials map[string]string

	// WallClock is injectable for tests, defaults to the real clock
	WallClock clockwork.Clock
}

type Orchestrator struct {
	ClientPort int
	WorkerPort int
	HeartbeatTimeout time.Duration

	Clock *lamport.LamportClock
	Tasks *task.TaskStore
	Workers *registry.WorkerRegistry
	Auth *auth.AuthRegistry
	Replicator *Replicator

	wallClock clockwork.Clock

	// dispatchMutex makes the dispatcher and the failure handler mutually
	// exclusive. both recurse through lock free internal variants
	dispatchMutex sync.Mutex
}

type ReplicatorOpts struct {
	Address string
	BackoffInterval time.Duration
	Snapshot func() *wire.GlobalState
}

type Replicator struct {
	address string
	backoffInterval time.Duration
	snapshot func() *wire.GlobalState

	mutex sync.Mutex
	frame *wire.FrameConn
	connecting bool
}
