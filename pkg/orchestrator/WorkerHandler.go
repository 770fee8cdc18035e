package orchestrator

import "github.com/sirgallo/conductor/pkg/registry"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Worker Handler


/*
	Handle Worker Connection:
		per connection loop for a single worker

		the first message must be REGISTER_WORKER, after which the session accepts
		HEARTBEAT and TASK_DONE. a message without a timestamp (heartbeats, and
		registration as the worker sends it) is a local tick, a stamped message
		merges its timestamp. a transport error after registration is treated as a
		worker failure
*/

func (orch *Orchestrator) HandleWorkerConnection(fc *wire.FrameConn) {
	workerId := ""

	for {
		env, recvErr := fc.Recv()
		if recvErr != nil {
			if workerId != "" && orch.ownsRegistration(workerId, fc) {
				Log.Warn("connection with worker", workerId, "lost:", recvErr.Error())
				orch.HandleWorkerFailure(workerId)
			} else {
				Log.Warn("worker connection lost with no live registration:", recvErr.Error())
				fc.Close()
			}

			return
		}

		if env.Lamport > 0 {
			orch.Clock.Merge(env.Lamport)
		} else {
			orch.Clock.Tick()
		}

		if workerId == "" && env.Kind != wire.RegisterWorker {
			Log.Warn("worker sent", string(env.Kind), "before registering, closing connection")
			fc.Close()
			return
		}

		switch env.Kind {
			case wire.RegisterWorker:
				id, decodeErr := wire.PayloadAs[string](env)
				if decodeErr != nil || id == "" {
					Log.Error("malformed registration payload, closing connection")
					fc.Close()
					return
				}

				workerId = id
				orch.Workers.Add(id, fc)
				Log.Info("worker", id, "registered | total workers:", orch.Workers.Size())

				orch.Replicator.Push()

				// newcomers absorb the waiting backlog immediately
				orch.RedispatchWaiting()
			case wire.Heartbeat:
				orch.Workers.Touch(workerId)
			case wire.TaskDone:
				orch.handleTaskDone(env)
			default:
				Log.Warn("unknown worker message kind:", string(env.Kind))
		}
	}
}

/*
	ownsRegistration:
		true when the registry still maps the id to this session's sink. a session
		evicted by a re-registration must not tear down its replacement
*/

func (orch *Orchestrator) ownsRegistration(workerId string, fc *wire.FrameConn) bool {
	info, exists := orch.Workers.Get(workerId)
	if !exists { return false }

	return info.Sink == registry.Sink(fc)
}

func (orch *Orchestrator) handleTaskDone(env *wire.Envelope) {
	completed, decodeErr := wire.PayloadAs[task.Task](env)
	if decodeErr != nil {
		Log.Error("malformed completion payload:", decodeErr.Error())
		return
	}

	orch.Clock.Merge(completed.Lamport)

	updated := orch.Tasks.Update(completed.Id, func(t *task.Task) {
		t.Status = task.Done
		t.WorkerId = ""
		t.Lamport = orch.Clock.Read()
	})
	if updated == nil {
		Log.Warn("completion for unknown task", completed.Id)
		return
	}

	Log.Info("task", updated.Id, "completed by worker", completed.WorkerId, "| clock:", updated.Lamport)
	orch.Replicator.Push()
}
