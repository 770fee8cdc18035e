package orchestrator

import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/utils"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Dispatcher


/*
	Dispatch Task:
		hand a waiting task to the next worker round robin

		1.) with no workers registered the task stays waiting, submission still
			succeeded from the client's point of view
		2.) pick the next worker and advance the cursor, the cursor advances even
			when the send below fails
		3.) mark the task running against the chosen worker and stamp it with a
			fresh tick, then build the NEW_TASK envelope under the current clock
		4.) write to the worker's sink. a failed write is a worker failure, which
			shrinks the registry, corrects the cursor and reschedules every task on
			that worker, this one included
		5.) replicate on success
*/

func (orch *Orchestrator) DispatchTask(id string) {
	orch.dispatchMutex.Lock()
	defer orch.dispatchMutex.Unlock()

	orch.dispatchTaskLocked(id)
}

func (orch *Orchestrator) dispatchTaskLocked(id string) {
	if orch.Workers.Size() == 0 {
		orch.Tasks.Update(id, func(t *task.Task) {
			t.Status = task.Waiting
			t.WorkerId = ""
		})

		Log.Info("no workers available, task", id, "waiting")
		return
	}

	workerId, nextErr := orch.Workers.Next()
	if nextErr != nil { return }

	info, exists := orch.Workers.Get(workerId)
	if !exists { return }

	updated := orch.Tasks.Update(id, func(t *task.Task) {
		t.Status = task.Running
		t.WorkerId = workerId
		t.Lamport = orch.Clock.Tick()
	})
	if updated == nil { return }

	env, encErr := wire.NewEnvelope(wire.NewTask, updated)
	if encErr != nil {
		Log.Error("unable to encode task envelope:", encErr.Error())
		return
	}
	env.Lamport = orch.Clock.Read()

	if sendErr := info.Sink.Send(env); sendErr != nil {
		Log.Warn("send to worker", workerId, "failed, rescheduling task", id)
		orch.handleWorkerFailureLocked(workerId)
		return
	}

	Log.Info("task", updated.Id, "dispatched to worker", workerId)
	orch.Replicator.Push()
}

/*
	Redispatch Waiting:
		walk the waiting backlog oldest first and dispatch each task. invoked when
		a new worker registers
*/

func (orch *Orchestrator) RedispatchWaiting() {
	orch.dispatchMutex.Lock()
	defer orch.dispatchMutex.Unlock()

	for _, waiting := range orch.Tasks.FilterByStatus(task.Waiting) {
		orch.dispatchTaskLocked(waiting.Id)
	}
}

/*
	Handle Worker Failure:
		1.) evict the worker from the registry, closing its socket. a second
			observer of the same failure finds nothing to do
		2.) over a stable snapshot, return every task running on that worker to
			waiting and re-enter dispatch for each. dispatch may hand them to other
			workers, or back to waiting when the registry emptied
		3.) replicate
*/

func (orch *Orchestrator) HandleWorkerFailure(id string) {
	orch.dispatchMutex.Lock()
	defer orch.dispatchMutex.Unlock()

	orch.handleWorkerFailureLocked(id)
}

func (orch *Orchestrator) handleWorkerFailureLocked(id string) {
	if removed := orch.Workers.Remove(id); !removed { return }
	Log.Warn("worker", id, "removed | total workers:", orch.Workers.Size())

	runningFilter := func(t *task.Task) bool { return t.Status == task.Running }
	orphaned := utils.Filter[*task.Task](orch.Tasks.AssignedTo(id), runningFilter)

	toId := func(t *task.Task) string { return t.Id }
	orphanedIds := utils.Map[*task.Task, string](orphaned, toId)

	if len(orphanedIds) > 0 { Log.Info("redistributing tasks from worker", id, ":", orphanedIds) }

	for _, orphanId := range orphanedIds {
		orch.Tasks.Update(orphanId, func(t *task.Task) {
			t.Status = task.Waiting
			t.WorkerId = ""
		})

		orch.dispatchTaskLocked(orphanId)
	}

	orch.Replicator.Push()
}
