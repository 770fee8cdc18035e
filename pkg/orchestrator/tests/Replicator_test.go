package orchestratortests

import "net"
import "testing"
import "time"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/conductor/pkg/orchestrator"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


func TestReplicatorStreamsSnapshots(t *testing.T) {
	listener, listenErr := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, listenErr)
	defer listener.Close()

	state := &wire.GlobalState{
		Tasks: map[string]*task.Task{
			"Task-aaa": { Id: "Task-aaa", Status: task.Waiting },
		},
		Workers: []string{ "Worker-1" },
		Clock: 3,
	}

	repl := orchestrator.NewReplicator(orchestrator.ReplicatorOpts{
		Address: listener.Addr().String(),
		BackoffInterval: 10 * time.Millisecond,
		Snapshot: func() *wire.GlobalState { return state },
	})

	repl.Connect()

	conn, acceptErr := listener.Accept()
	require.NoError(t, acceptErr)
	defer conn.Close()

	standbySide := wire.NewFrameConn(conn)

	// the connect loop pushes a full snapshot as soon as the link is up
	initial, recvErr := standbySide.Recv()
	require.NoError(t, recvErr)
	require.Equal(t, wire.SyncState, initial.Kind)

	decoded, decodeErr := wire.PayloadAs[wire.GlobalState](initial)
	require.NoError(t, decodeErr)
	assert.Equal(t, uint64(3), decoded.Clock)
	assert.Equal(t, []string{ "Worker-1" }, decoded.Workers)

	// subsequent pushes reflect the state at push time
	state.Clock = 9
	repl.Push()

	second, recvErr := standbySide.Recv()
	require.NoError(t, recvErr)

	decoded, decodeErr = wire.PayloadAs[wire.GlobalState](second)
	require.NoError(t, decodeErr)
	assert.Equal(t, uint64(9), decoded.Clock)
}

func TestPushWithoutStandbyIsNoOp(t *testing.T) {
	repl := orchestrator.NewReplicator(orchestrator.ReplicatorOpts{
		Address: "127.0.0.1:1",
		BackoffInterval: time.Hour,
		Snapshot: func() *wire.GlobalState {
			t.Fatal("snapshot taken with no standby connected")
			return nil
		},
	})

	// replication is best effort, a push with no link never blocks or snapshots
	repl.Push()
}
