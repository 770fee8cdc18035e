package orchestrator

import "github.com/sirgallo/conductor/pkg/auth"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Client Handler


/*
	Handle Client Connection:
		per connection loop for a single client

		the connection starts unauthenticated and only AUTHENTICATE is accepted.
		once a token is issued the session accepts SUBMIT_TASK and QUERY_STATUS,
		each of which must carry a valid token. any protocol violation closes the
		connection without mutating state. the session token is revoked when the
		connection ends
*/

func (orch *Orchestrator) HandleClientConnection(fc *wire.FrameConn) {
	defer fc.Close()

	sessionToken := ""
	defer func() {
		if sessionToken != "" { orch.Auth.Revoke(sessionToken) }
	}()

	for {
		env, recvErr := fc.Recv()
		if recvErr != nil {
			Log.Info("client connection closed:", recvErr.Error())
			return
		}

		if env.Lamport > 0 { orch.Clock.Merge(env.Lamport) }
		Log.Info("message received from client:", string(env.Kind), "| clock:", orch.Clock.Read())

		if sessionToken == "" && env.Kind != wire.Authenticate {
			Log.Warn("client sent", string(env.Kind), "before authenticating, closing connection")
			return
		}

		switch env.Kind {
			case wire.Authenticate:
				if !orch.handleAuthenticate(fc, env, &sessionToken) { return }
			case wire.SubmitTask:
				if !orch.handleSubmitTask(fc, env) { return }
			case wire.QueryStatus:
				if !orch.handleQueryStatus(fc, env) { return }
			default:
				Log.Warn("unknown client message kind:", string(env.Kind), "closing connection")
				return
		}
	}
}

func (orch *Orchestrator) handleAuthenticate(fc *wire.FrameConn, env *wire.Envelope, sessionToken *string) bool {
	creds, decodeErr := wire.PayloadAs[auth.Credentials](env)
	if decodeErr != nil {
		Log.Error("malformed credentials payload:", decodeErr.Error())
		return false
	}

	token, authErr := orch.Auth.Verify(creds.Username, creds.Password)
	if authErr != nil {
		Log.Warn("authentication failed for user", creds.Username)

		reply := wire.NewEmptyEnvelope(wire.AuthFail)
		reply.Lamport = orch.Clock.Tick()
		fc.Send(reply)

		return false
	}

	*sessionToken = token
	Log.Info("client", creds.Username, "authenticated")

	reply, encErr := wire.NewEnvelope(wire.AuthOk, token)
	if encErr != nil { return false }

	reply.Lamport = orch.Clock.Tick()
	return fc.Send(reply) == nil
}

func (orch *Orchestrator) handleSubmitTask(fc *wire.FrameConn, env *wire.Envelope) bool {
	if !orch.authorized(env) {
		Log.Warn("submit with invalid token, closing connection")
		return false
	}

	submitted, decodeErr := wire.PayloadAs[task.Task](env)
	if decodeErr != nil {
		Log.Error("malformed task payload:", decodeErr.Error())
		return false
	}

	// client supplied status and worker are ignored, a new record always waits
	record := &task.Task{
		Id: submitted.Id,
		ClientId: submitted.ClientId,
		Payload: submitted.Payload,
		Status: task.Waiting,
	}

	orch.Tasks.Put(record)
	Log.Info("task", record.Id, "received from client", record.ClientId)

	orch.Replicator.Push()
	orch.DispatchTask(record.Id)

	reply, encErr := wire.NewEnvelope(wire.TaskAccepted, record.Id)
	if encErr != nil { return false }

	reply.Lamport = orch.Clock.Tick()
	return fc.Send(reply) == nil
}

func (orch *Orchestrator) handleQueryStatus(fc *wire.FrameConn, env *wire.Envelope) bool {
	if !orch.authorized(env) {
		Log.Warn("query with invalid token, closing connection")
		return false
	}

	id, decodeErr := wire.PayloadAs[string](env)
	if decodeErr != nil {
		Log.Error("malformed query payload:", decodeErr.Error())
		return false
	}

	var reply *wire.Envelope

	queried := orch.Tasks.Get(id)
	if queried == nil {
		reply = wire.NewEmptyEnvelope(wire.StatusReply)
	} else {
		var encErr error
		reply, encErr = wire.NewEnvelope(wire.StatusReply, queried)
		if encErr != nil { return false }
	}

	reply.Lamport = orch.Clock.Tick()
	return fc.Send(reply) == nil
}

func (orch *Orchestrator) authorized(env *wire.Envelope) bool {
	if env.Token == "" { return false }

	_, exists := orch.Auth.UserOf(env.Token)
	return exists
}
