package standby

import "fmt"
import "net"
import "os"

import "github.com/jonboulle/clockwork"

import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Standby


const NAME = "Standby"
var Log = clog.NewCustomLog(NAME)


/*
	initialize the passive replica

	the standby holds an in-memory copy of the primary's global state and a
	failover detector. promotion is operator driven: on a confirmed primary
	failure the detector emits a banner and stops the process
*/

func NewStandbyService(opts StandbyOpts) *StandbyService {
	wallClock := opts.WallClock
	if wallClock == nil { wallClock = clockwork.NewRealClock() }

	standby := &StandbyService{
		SyncPort: opts.SyncPort,
		PrimaryHost: opts.PrimaryHost,
		PrimaryClientPort: opts.PrimaryClientPort,
		PrimaryWorkerPort: opts.PrimaryWorkerPort,
		FailoverTimeout: opts.FailoverTimeout,
		wallClock: wallClock,
		probe: opts.Probe,
		onFailover: opts.OnFailover,
		phase: Replicating,
		lastSync: wallClock.Now(),
		replicatedTasks: make(map[string]*task.Task),
	}

	if standby.probe == nil { standby.probe = probePort }
	if standby.onFailover == nil { standby.onFailover = func() { os.Exit(0) } }

	return standby
}

/*
	Start Standby Service:
		1.) start the failover detector
		2.) accept the primary's replication connection and apply each SYNC_STATE
			envelope. a dropped connection returns to the accept loop, the detector
			decides whether the silence is a failure
*/

func (standby *StandbyService) StartStandbyService() error {
	Log.Info("starting standby orchestrator on port", standby.SyncPort)

	go standby.StartFailoverDetector()

	listener, listenErr := net.Listen("tcp", fmt.Sprintf(":%d", standby.SyncPort))
	if listenErr != nil { return listenErr }

	for {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil { return acceptErr }

		Log.Info("primary connected for state synchronization")
		standby.MarkSynced()

		standby.receiveLoop(wire.NewFrameConn(conn))
	}
}

func (standby *StandbyService) receiveLoop(fc *wire.FrameConn) {
	defer fc.Close()

	for {
		env, recvErr := fc.Recv()
		if recvErr != nil {
			Log.Warn("connection with primary lost:", recvErr.Error())
			return
		}

		if applyErr := standby.ApplyEnvelope(env); applyErr != nil {
			Log.Error("unable to apply sync envelope:", applyErr.Error())
		}
	}
}

/*
	Apply Envelope:
		overwrite the replicated state with the snapshot carried by a SYNC_STATE
		envelope and stamp the sync time. other kinds are logged and ignored
*/

func (standby *StandbyService) ApplyEnvelope(env *wire.Envelope) error {
	if env.Kind != wire.SyncState {
		Log.Warn("unexpected message kind on sync stream:", string(env.Kind))
		return nil
	}

	state, decodeErr := wire.PayloadAs[wire.GlobalState](env)
	if decodeErr != nil { return decodeErr }

	standby.mutex.Lock()
	defer standby.mutex.Unlock()

	standby.replicatedTasks = state.Tasks
	if standby.replicatedTasks == nil { standby.replicatedTasks = make(map[string]*task.Task) }
	standby.replicatedWorkers = state.Workers
	standby.replicatedClock = state.Clock

	standby.lastSync = standby.wallClock.Now()
	standby.phase = Replicating

	Log.Info(
		"replicated state updated | tasks:", len(standby.replicatedTasks),
		"workers:", len(standby.replicatedWorkers),
		"clock:", standby.replicatedClock,
	)

	return nil
}

/*
	Mark Synced:
		reset the silence timer without applying state, used when the primary
		(re)establishes the sync connection
*/

func (standby *StandbyService) MarkSynced() {
	standby.mutex.Lock()
	defer standby.mutex.Unlock()

	standby.lastSync = standby.wallClock.Now()
	standby.phase = Replicating
}

func (standby *StandbyService) Phase() StandbyPhase {
	standby.mutex.Lock()
	defer standby.mutex.Unlock()

	return standby.phase
}

func (standby *StandbyService) ReplicatedState() (map[string]*task.Task, []string, uint64) {
	standby.mutex.Lock()
	defer standby.mutex.Unlock()

	tasks := make(map[string]*task.Task, len(standby.replicatedTasks))
	for id, stored := range standby.replicatedTasks {
		t := *stored
		tasks[id] = &t
	}

	workers := make([]string, len(standby.replicatedWorkers))
	copy(workers, standby.replicatedWorkers)

	return tasks, workers, standby.replicatedClock
}
