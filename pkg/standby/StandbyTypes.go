package standby

import "sync"
import "time"

import "github.com/jonboulle/clockwork"

import "github.com/sirgallo/conductor/pkg/task"


type StandbyPhase string

const (
	Replicating StandbyPhase = "REPLICATING"
	Suspect StandbyPhase = "SUSPECT"
	FailedOver StandbyPhase = "FAILED_OVER"
)

type StandbyOpts struct {
	SyncPort int

	PrimaryHost string
	PrimaryClientPort int
	PrimaryWorkerPort int

	FailoverTimeout time.Duration

	// WallClock is injectable for tests, defaults to the real clock
	WallClock clockwork.Clock

	// Probe overrides the tcp port probe in tests
	Probe func(host string, port int) bool

	// OnFailover overrides process termination in tests
	OnFailover func()
}

type StandbyService struct {
	SyncPort int

	PrimaryHost string
	PrimaryClientPort int
	PrimaryWorkerPort int

	FailoverTimeout time.Duration

	wallClock clockwork.Clock
	probe func(host string, port int) bool
	onFailover func()

	mutex sync.Mutex
	phase StandbyPhase
	lastSync time.Time

	replicatedTasks map[string]*task.Task
	replicatedWorkers []string
	replicatedClock uint64
}
