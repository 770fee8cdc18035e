package worker

import "fmt"
import "math/rand"
import "net"
import "os"
import "time"

import "github.com/google/uuid"
import "github.com/jonboulle/clockwork"

import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Worker Node


/*
	initialize a worker node with a generated id

	the worker is a protocol actor: it registers, heartbeats, executes whatever the
	orchestrator pushes and reports completion. processing is simulated with a
	randomized duration and a crash probability to exercise failure handling
*/

func NewWorkerNode(opts WorkerOpts) *WorkerNode {
	wallClock := opts.WallClock
	if wallClock == nil { wallClock = clockwork.NewRealClock() }

	exit := opts.Exit
	if exit == nil { exit = os.Exit }

	return &WorkerNode{
		Id: "Worker-" + uuid.NewString()[0:8],
		address: fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		heartbeatInterval: opts.HeartbeatInterval,
		minProcessing: opts.MinProcessing,
		maxProcessing: opts.MaxProcessing,
		crashPercent: opts.CrashPercent,
		wallClock: wallClock,
		exit: exit,
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

/*
	Start Worker Node:
		1.) connect to the orchestrator's worker port and register
		2.) start the heartbeat ticker
		3.) loop on pushed NEW_TASK envelopes until the connection drops. on a
			dropped connection the worker just stops, the orchestrator detects the
			failure on its side
*/

func (w *WorkerNode) StartWorkerNode() error {
	wLog := clog.NewCustomLog(w.Id)

	conn, dialErr := net.Dial("tcp", w.address)
	if dialErr != nil { return dialErr }

	w.frame = wire.NewFrameConn(conn)
	defer w.frame.Close()

	register, encErr := wire.NewEnvelope(wire.RegisterWorker, w.Id)
	if encErr != nil { return encErr }
	if sendErr := w.frame.Send(register); sendErr != nil { return sendErr }

	wLog.Info("registered with orchestrator at", w.address)

	stopHeartbeat := make(chan struct{})
	defer close(stopHeartbeat)
	go w.heartbeatLoop(wLog, stopHeartbeat)

	for {
		env, recvErr := w.frame.Recv()
		if recvErr != nil {
			wLog.Error("connection with orchestrator lost:", recvErr.Error())
			return recvErr
		}

		if env.Kind != wire.NewTask {
			wLog.Warn("unexpected message kind:", string(env.Kind))
			continue
		}

		assigned, decodeErr := wire.PayloadAs[task.Task](env)
		if decodeErr != nil {
			wLog.Error("malformed task payload:", decodeErr.Error())
			continue
		}

		w.ProcessTask(wLog, &assigned)
	}
}

func (w *WorkerNode) heartbeatLoop(wLog *clog.CustomLog, stop chan struct{}) {
	ticker := w.wallClock.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
			case <- stop:
				return
			case <- ticker.Chan():
				heartbeat, encErr := wire.NewEnvelope(wire.Heartbeat, w.Id)
				if encErr != nil { continue }

				if sendErr := w.frame.Send(heartbeat); sendErr != nil {
					wLog.Warn("heartbeat send failed:", sendErr.Error())
					return
				}
		}
	}
}

/*
	Process Task:
		simulate execution for a uniform random duration inside the configured
		bounds, crash the process with the configured probability, otherwise report
		TASK_DONE echoing the task's timestamp. the worker keeps no clock of its
		own, the orchestrator merges the echoed stamp
*/

func (w *WorkerNode) ProcessTask(wLog *clog.CustomLog, assigned *task.Task) {
	wLog.Info("task", assigned.Id, "received, processing")

	spread := w.maxProcessing - w.minProcessing
	duration := w.minProcessing
	if spread > 0 { duration += time.Duration(w.random.Int63n(int64(spread))) }
	if duration > 0 { w.wallClock.Sleep(duration) }

	if w.random.Intn(100) < w.crashPercent {
		wLog.Error("simulating a critical failure, task", assigned.Id, "abandoned")
		w.exit(1)
		return
	}

	assigned.Status = task.Done

	done, encErr := wire.NewEnvelope(wire.TaskDone, assigned)
	if encErr != nil {
		wLog.Error("unable to encode completion envelope:", encErr.Error())
		return
	}
	done.Lamport = assigned.Lamport

	if sendErr := w.frame.Send(done); sendErr != nil {
		wLog.Error("completion send failed:", sendErr.Error())
		return
	}

	wLog.Info("task", assigned.Id, "completed")
}
