package orchestrator

import "fmt"
import "net"

import "github.com/jonboulle/clockwork"
import "golang.org/x/sync/errgroup"

import "github.com/sirgallo/conductor/pkg/auth"
import "github.com/sirgallo/conductor/pkg/lamport"
import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/registry"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Orchestrator


const NAME = "Orchestrator"
var Log = clog.NewCustomLog(NAME)


/*
	initialize the control plane and link the sub modules

	the lamport clock, the task store, the worker registry and the auth registry
	are owned here and passed into the session handlers. the replicator snapshots
	through a closure over the same state
*/

func NewOrchestrator(opts OrchestratorOpts) *Orchestrator {
	wallClock := opts.WallClock
	if wallClock == nil { wallClock = clockwork.NewRealClock() }

	orch := &Orchestrator{
		ClientPort: opts.ClientPort,
		WorkerPort: opts.WorkerPort,
		HeartbeatTimeout: opts.HeartbeatTimeout,
		Clock: lamport.NewLamportClock(),
		Tasks: task.NewTaskStore(),
		Workers: registry.NewWorkerRegistry(wallClock),
		Auth: auth.NewAuthRegistry(opts.Credentials),
		wallClock: wallClock,
	}

	orch.Replicator = NewReplicator(ReplicatorOpts{
		Address: opts.StandbyAddress,
		BackoffInterval: opts.ReconnectBackoff,
		Snapshot: orch.GlobalSnapshot,
	})

	return orch
}

/*
	Start Orchestrator Service:
		1.) begin the background connect loop to the standby
		2.) start the liveness monitor
		3.) run the client and worker listeners, one accept loop each
*/

func (orch *Orchestrator) StartOrchestratorService() error {
	Log.Info("starting primary orchestrator")

	orch.Replicator.Connect()
	go orch.StartLivenessMonitor()

	var group errgroup.Group

	group.Go(func() error { return orch.listenClients() })
	group.Go(func() error { return orch.listenWorkers() })

	return group.Wait()
}

func (orch *Orchestrator) listenClients() error {
	listener, listenErr := net.Listen("tcp", fmt.Sprintf(":%d", orch.ClientPort))
	if listenErr != nil { return listenErr }

	Log.Info("awaiting clients on port", orch.ClientPort)

	for {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil { return acceptErr }

		go orch.HandleClientConnection(wire.NewFrameConn(conn))
	}
}

func (orch *Orchestrator) listenWorkers() error {
	listener, listenErr := net.Listen("tcp", fmt.Sprintf(":%d", orch.WorkerPort))
	if listenErr != nil { return listenErr }

	Log.Info("awaiting workers on port", orch.WorkerPort)

	for {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil { return acceptErr }

		go orch.HandleWorkerConnection(wire.NewFrameConn(conn))
	}
}

/*
	Global Snapshot:
		stable copy of tasks, live worker ids and the clock for replication
*/

func (orch *Orchestrator) GlobalSnapshot() *wire.GlobalState {
	return &wire.GlobalState{
		Tasks: orch.Tasks.Snapshot(),
		Workers: orch.Workers.SnapshotIds(),
		Clock: orch.Clock.Read(),
	}
}
