package orchestrator

import "net"
import "time"

import "github.com/cenkalti/backoff/v4"

import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Replicator


const dialTimeout = 3 * time.Second

var replicatorLog = clog.NewCustomLog("Replicator")


/*
	initialize the replication sender

	the sender owns the single connection to the standby. pushes are invoked after
	every state mutating event and never block user facing work for longer than one
	socket write, a lost connection drops into the background reconnect loop
*/

func NewReplicator(opts ReplicatorOpts) *Replicator {
	return &Replicator{
		address: opts.Address,
		backoffInterval: opts.BackoffInterval,
		snapshot: opts.Snapshot,
	}
}

/*
	Connect:
		background dial loop with fixed interval backoff until the standby accepts,
		then immediately push a full snapshot. concurrent callers collapse into the
		one running loop
*/

func (repl *Replicator) Connect() {
	repl.mutex.Lock()
	if repl.connecting || repl.frame != nil {
		repl.mutex.Unlock()
		return
	}
	repl.connecting = true
	repl.mutex.Unlock()

	go func() {
		dial := func() error {
			conn, dialErr := net.DialTimeout("tcp", repl.address, dialTimeout)
			if dialErr != nil {
				replicatorLog.Info("awaiting standby at", repl.address)
				return dialErr
			}

			repl.mutex.Lock()
			repl.frame = wire.NewFrameConn(conn)
			repl.connecting = false
			repl.mutex.Unlock()

			return nil
		}

		backoff.Retry(dial, backoff.NewConstantBackOff(repl.backoffInterval))

		replicatorLog.Info("connected to standby at", repl.address)
		repl.Push()
	}()
}

/*
	Push:
		serialize a stable snapshot of the global state into a SYNC_STATE envelope
		and write it. with no standby connected the push is a no-op, replication is
		best effort. a failed write drops the connection and respawns the dial loop
*/

func (repl *Replicator) Push() {
	repl.mutex.Lock()
	frame := repl.frame
	repl.mutex.Unlock()

	if frame == nil { return }

	state := repl.snapshot()

	env, encErr := wire.NewEnvelope(wire.SyncState, state)
	if encErr != nil {
		replicatorLog.Error("unable to encode sync envelope:", encErr.Error())
		return
	}
	env.Lamport = state.Clock

	if sendErr := frame.Send(env); sendErr != nil {
		replicatorLog.Warn("sync push failed:", sendErr.Error(), "| reconnecting")

		repl.mutex.Lock()
		if repl.frame == frame { repl.frame = nil }
		repl.mutex.Unlock()

		frame.Close()
		repl.Connect()

		return
	}

	replicatorLog.Debug("state synchronized with standby | clock:", state.Clock)
}
