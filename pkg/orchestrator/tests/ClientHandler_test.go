package orchestratortests

import "net"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/conductor/pkg/auth"
import "github.com/sirgallo/conductor/pkg/orchestrator"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


func startClientSession(t *testing.T, orch *orchestrator.Orchestrator) *wire.FrameConn {
	clientSide, serverSide := net.Pipe()

	go orch.HandleClientConnection(wire.NewFrameConn(serverSide))

	fc := wire.NewFrameConn(clientSide)
	t.Cleanup(func() { fc.Close() })

	return fc
}

func authenticate(t *testing.T, fc *wire.FrameConn, username string, password string) *wire.Envelope {
	env, encErr := wire.NewEnvelope(wire.Authenticate, auth.Credentials{ Username: username, Password: password })
	require.NoError(t, encErr)
	env.Lamport = 1

	require.NoError(t, fc.Send(env))

	reply, recvErr := fc.Recv()
	require.NoError(t, recvErr)

	return reply
}

func TestAuthHandshakeIssuesToken(t *testing.T) {
	orch, _ := newOrchestrator()
	fc := startClientSession(t, orch)

	reply := authenticate(t, fc, "cliente1", "senha123")
	assert.Equal(t, wire.AuthOk, reply.Kind)
	assert.Greater(t, reply.Lamport, uint64(0))

	token, decodeErr := wire.PayloadAs[string](reply)
	require.NoError(t, decodeErr)
	require.NotEmpty(t, token)

	username, exists := orch.Auth.UserOf(token)
	assert.True(t, exists)
	assert.Equal(t, "cliente1", username)
}

func TestAuthFailureClosesConnection(t *testing.T) {
	orch, _ := newOrchestrator()
	fc := startClientSession(t, orch)

	reply := authenticate(t, fc, "cliente1", "wrong")
	assert.Equal(t, wire.AuthFail, reply.Kind)

	// the handler hangs up after AUTH_FAIL, nothing further is answered
	_, recvErr := fc.Recv()
	assert.Error(t, recvErr)
}

func TestSubmitBeforeAuthClosesConnection(t *testing.T) {
	orch, _ := newOrchestrator()
	fc := startClientSession(t, orch)

	env, encErr := wire.NewEnvelope(wire.SubmitTask, task.Task{ Id: "Task-aaa", ClientId: "cliente1" })
	require.NoError(t, encErr)
	require.NoError(t, fc.Send(env))

	_, recvErr := fc.Recv()
	assert.Error(t, recvErr)
	assert.Equal(t, 0, orch.Tasks.Size())
}

func TestSubmitWithForgedTokenClosesConnection(t *testing.T) {
	orch, _ := newOrchestrator()
	fc := startClientSession(t, orch)

	reply := authenticate(t, fc, "cliente1", "senha123")
	require.Equal(t, wire.AuthOk, reply.Kind)

	env, encErr := wire.NewEnvelope(wire.SubmitTask, task.Task{ Id: "Task-aaa", ClientId: "cliente1" })
	require.NoError(t, encErr)
	env.Token = "forged"
	env.Lamport = 2
	require.NoError(t, fc.Send(env))

	_, recvErr := fc.Recv()
	assert.Error(t, recvErr)
	assert.Equal(t, 0, orch.Tasks.Size())
}

func TestSubmitAndQueryLifecycle(t *testing.T) {
	orch, _ := newOrchestrator()
	fc := startClientSession(t, orch)

	reply := authenticate(t, fc, "cliente1", "senha123")
	require.Equal(t, wire.AuthOk, reply.Kind)

	token, decodeErr := wire.PayloadAs[string](reply)
	require.NoError(t, decodeErr)

	// submit with no workers registered, accepted and waiting
	submit, encErr := wire.NewEnvelope(wire.SubmitTask, task.Task{ Id: "Task-ddd", ClientId: "cliente1", Payload: "x" })
	require.NoError(t, encErr)
	submit.Token = token
	submit.Lamport = 2
	require.NoError(t, fc.Send(submit))

	accepted, recvErr := fc.Recv()
	require.NoError(t, recvErr)
	assert.Equal(t, wire.TaskAccepted, accepted.Kind)

	acceptedId, decodeErr := wire.PayloadAs[string](accepted)
	require.NoError(t, decodeErr)
	assert.Equal(t, "Task-ddd", acceptedId)

	// the stored record waits, the client supplied status is ignored
	stored := orch.Tasks.Get("Task-ddd")
	require.NotNil(t, stored)
	assert.Equal(t, task.Waiting, stored.Status)

	// query the stored record
	query, encErr := wire.NewEnvelope(wire.QueryStatus, "Task-ddd")
	require.NoError(t, encErr)
	query.Token = token
	query.Lamport = 3
	require.NoError(t, fc.Send(query))

	status, recvErr := fc.Recv()
	require.NoError(t, recvErr)
	require.Equal(t, wire.StatusReply, status.Kind)
	require.True(t, wire.HasPayload(status))

	queried, decodeErr := wire.PayloadAs[task.Task](status)
	require.NoError(t, decodeErr)
	assert.Equal(t, "Task-ddd", queried.Id)
	assert.Equal(t, task.Waiting, queried.Status)

	// query an unknown id, empty reply instead of an error
	unknown, encErr := wire.NewEnvelope(wire.QueryStatus, "Task-missing")
	require.NoError(t, encErr)
	unknown.Token = token
	unknown.Lamport = 4
	require.NoError(t, fc.Send(unknown))

	missing, recvErr := fc.Recv()
	require.NoError(t, recvErr)
	assert.Equal(t, wire.StatusReply, missing.Kind)
	assert.False(t, wire.HasPayload(missing))
}

func TestInboundTimestampsMergeIntoClock(t *testing.T) {
	orch, _ := newOrchestrator()
	fc := startClientSession(t, orch)

	env, encErr := wire.NewEnvelope(wire.Authenticate, auth.Credentials{ Username: "cliente1", Password: "senha123" })
	require.NoError(t, encErr)
	env.Lamport = 50

	require.NoError(t, fc.Send(env))

	reply, recvErr := fc.Recv()
	require.NoError(t, recvErr)

	// merge(50) then the reply tick puts the reply past the remote stamp
	assert.Greater(t, reply.Lamport, uint64(50))
}
