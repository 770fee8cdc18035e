package main

import "fmt"
import "net"
import "os"
import "strconv"
import "sync"
import "time"

import "github.com/google/uuid"

import "github.com/sirgallo/conductor/pkg/auth"
import "github.com/sirgallo/conductor/pkg/config"
import "github.com/sirgallo/conductor/pkg/lamport"
import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


const NAME = "Simulate Load"
var Log = clog.NewCustomLog(NAME)

const DEFAULT_TASKS = 25
const POLL_INTERVAL = 2 * time.Second


/*
	drive the orchestrator with a synthetic workload

	authenticates as the first seeded user, submits a batch of tasks and polls
	until every one reports DONE. useful against a cluster with a few workers
	running their crash simulation, the batch only drains when redistribution
	works
*/

func main() {
	conf, confErr := config.LoadConfig()
	if confErr != nil { Log.Fatal("unable to load configuration:", confErr.Error()) }

	totalTasks := DEFAULT_TASKS
	if len(os.Args) >= 2 {
		parsed, parseErr := strconv.Atoi(os.Args[1])
		if parseErr != nil { Log.Fatal("usage: simulateload <task count>") }
		totalTasks = parsed
	}

	conn, dialErr := net.Dial("tcp", fmt.Sprintf("%s:%d", conf.PrimaryHost, conf.ClientPort))
	if dialErr != nil { Log.Fatal("unable to reach orchestrator:", dialErr.Error()) }

	frame := wire.NewFrameConn(conn)
	defer frame.Close()

	clock := lamport.NewLamportClock()
	var sendMutex sync.Mutex

	send := func(env *wire.Envelope, token string) (*wire.Envelope, error) {
		sendMutex.Lock()
		defer sendMutex.Unlock()

		env.Token = token
		env.Lamport = clock.Tick()
		if sendErr := frame.Send(env); sendErr != nil { return nil, sendErr }

		reply, recvErr := frame.Recv()
		if recvErr != nil { return nil, recvErr }

		if reply.Lamport > 0 { clock.Merge(reply.Lamport) }
		return reply, nil
	}

	authEnv, encErr := wire.NewEnvelope(wire.Authenticate, auth.Credentials{ Username: "cliente1", Password: conf.Credentials["cliente1"] })
	if encErr != nil { Log.Fatal(encErr.Error()) }

	authReply, authErr := send(authEnv, "")
	if authErr != nil || authReply.Kind != wire.AuthOk { Log.Fatal("authentication failed") }

	token, decodeErr := wire.PayloadAs[string](authReply)
	if decodeErr != nil { Log.Fatal(decodeErr.Error()) }

	var taskIds []string
	for i := 0; i < totalTasks; i++ {
		submitted := task.Task{
			Id: "Task-" + uuid.NewString()[0:8],
			ClientId: "cliente1",
			Payload: fmt.Sprintf("synthetic workload %d", i),
		}

		submitEnv, submitEncErr := wire.NewEnvelope(wire.SubmitTask, submitted)
		if submitEncErr != nil { Log.Fatal(submitEncErr.Error()) }

		reply, submitErr := send(submitEnv, token)
		if submitErr != nil || reply.Kind != wire.TaskAccepted { Log.Fatal("task submission failed") }

		taskIds = append(taskIds, submitted.Id)
	}

	Log.Info("submitted", totalTasks, "tasks, polling until completion")

	remaining := totalTasks
	for remaining > 0 {
		time.Sleep(POLL_INTERVAL)
		remaining = 0

		for _, id := range taskIds {
			queryEnv, queryEncErr := wire.NewEnvelope(wire.QueryStatus, id)
			if queryEncErr != nil { Log.Fatal(queryEncErr.Error()) }

			reply, queryErr := send(queryEnv, token)
			if queryErr != nil { Log.Fatal("status query failed:", queryErr.Error()) }
			if !wire.HasPayload(reply) { continue }

			queried, queryDecodeErr := wire.PayloadAs[task.Task](reply)
			if queryDecodeErr != nil { Log.Fatal(queryDecodeErr.Error()) }

			if queried.Status != task.Done { remaining++ }
		}

		Log.Info(remaining, "of", totalTasks, "tasks still in flight")
	}

	Log.Info("all", totalTasks, "tasks completed")
}
