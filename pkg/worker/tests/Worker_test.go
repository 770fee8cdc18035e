package workertests

import "net"
import "testing"
import "time"

import "github.com/jonboulle/clockwork"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"
import "github.com/sirgallo/conductor/pkg/worker"


func startWorkerAgainstListener(t *testing.T, crashPercent int, exit func(code int)) (*worker.WorkerNode, *wire.FrameConn) {
	listener, listenErr := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, listenErr)
	t.Cleanup(func() { listener.Close() })

	node := worker.NewWorkerNode(worker.WorkerOpts{
		Host: "127.0.0.1",
		Port: listener.Addr().(*net.TCPAddr).Port,
		HeartbeatInterval: time.Hour,
		MinProcessing: 0,
		MaxProcessing: 0,
		CrashPercent: crashPercent,
		WallClock: clockwork.NewFakeClock(),
		Exit: exit,
	})

	go node.StartWorkerNode()

	conn, acceptErr := listener.Accept()
	require.NoError(t, acceptErr)
	t.Cleanup(func() { conn.Close() })

	return node, wire.NewFrameConn(conn)
}

func TestWorkerRegistersAndCompletesTask(t *testing.T) {
	node, orchestratorSide := startWorkerAgainstListener(t, 0, nil)

	registration, recvErr := orchestratorSide.Recv()
	require.NoError(t, recvErr)
	require.Equal(t, wire.RegisterWorker, registration.Kind)

	registeredId, decodeErr := wire.PayloadAs[string](registration)
	require.NoError(t, decodeErr)
	assert.Equal(t, node.Id, registeredId)

	assigned := &task.Task{
		Id: "Task-aaa",
		ClientId: "cliente1",
		Payload: "x",
		Status: task.Running,
		WorkerId: node.Id,
		Lamport: 5,
	}

	push, encErr := wire.NewEnvelope(wire.NewTask, assigned)
	require.NoError(t, encErr)
	push.Lamport = 5
	require.NoError(t, orchestratorSide.Send(push))

	completion, recvErr := orchestratorSide.Recv()
	require.NoError(t, recvErr)
	require.Equal(t, wire.TaskDone, completion.Kind)

	// the worker echoes the stamp it was handed, it keeps no clock of its own
	assert.Equal(t, uint64(5), completion.Lamport)

	completed, decodeErr := wire.PayloadAs[task.Task](completion)
	require.NoError(t, decodeErr)
	assert.Equal(t, "Task-aaa", completed.Id)
	assert.Equal(t, task.Done, completed.Status)
}

func TestWorkerCrashSimulation(t *testing.T) {
	exitCodes := make(chan int, 1)
	_, orchestratorSide := startWorkerAgainstListener(t, 100, func(code int) { exitCodes <- code })

	_, recvErr := orchestratorSide.Recv()
	require.NoError(t, recvErr)

	push, encErr := wire.NewEnvelope(wire.NewTask, &task.Task{ Id: "Task-bbb", Status: task.Running, Lamport: 2 })
	require.NoError(t, encErr)
	require.NoError(t, orchestratorSide.Send(push))

	select {
		case code := <- exitCodes:
			assert.Equal(t, 1, code)
		case <- time.After(time.Second):
			t.Fatal("worker did not simulate the crash")
	}
}
