package client

import "errors"
import "fmt"
import "net"

import "github.com/AlecAivazis/survey/v2"
import "github.com/google/uuid"

import "github.com/sirgallo/conductor/pkg/auth"
import "github.com/sirgallo/conductor/pkg/lamport"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


//=========================================== Client Session


const (
	menuSubmit = "Submit a new task"
	menuQuery = "Query task status"
	menuQuit = "Quit"
)

var ErrAuthRejected = errors.New("authentication rejected by orchestrator")


/*
	initialize an interactive client session

	the client keeps its own lamport clock: every outbound message is stamped with
	a tick, every reply is merged
*/

func NewClientSession(opts ClientOpts) *ClientSession {
	return &ClientSession{
		address: fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		clock: lamport.NewLamportClock(),
	}
}

/*
	Start Client Session:
		connect, authenticate, then loop the menu until quit
*/

func (session *ClientSession) StartClientSession() error {
	conn, dialErr := net.Dial("tcp", session.address)
	if dialErr != nil { return dialErr }

	session.frame = wire.NewFrameConn(conn)
	defer session.frame.Close()

	if authErr := session.Authenticate(); authErr != nil {
		fmt.Println("Authentication failed.")
		return authErr
	}

	fmt.Printf("Welcome, %s.\n", session.username)

	for {
		choice := ""
		prompt := &survey.Select{
			Message: "Choose an option:",
			Options: []string{ menuSubmit, menuQuery, menuQuit },
		}

		if askErr := survey.AskOne(prompt, &choice); askErr != nil { return askErr }

		switch choice {
			case menuSubmit:
				if submitErr := session.SubmitTask(); submitErr != nil { return submitErr }
			case menuQuery:
				if queryErr := session.QueryStatus(); queryErr != nil { return queryErr }
			case menuQuit:
				return nil
		}
	}
}

/*
	Authenticate:
		prompt for credentials and run the auth handshake. AUTH_FAIL closes the
		session, the orchestrator will not speak further on this connection
*/

func (session *ClientSession) Authenticate() error {
	username := ""
	if askErr := survey.AskOne(&survey.Input{ Message: "Username:" }, &username); askErr != nil { return askErr }

	password := ""
	if askErr := survey.AskOne(&survey.Password{ Message: "Password:" }, &password); askErr != nil { return askErr }

	env, encErr := wire.NewEnvelope(wire.Authenticate, auth.Credentials{ Username: username, Password: password })
	if encErr != nil { return encErr }
	if sendErr := session.send(env); sendErr != nil { return sendErr }

	reply, recvErr := session.recv()
	if recvErr != nil { return recvErr }

	if reply.Kind != wire.AuthOk { return ErrAuthRejected }

	token, decodeErr := wire.PayloadAs[string](reply)
	if decodeErr != nil { return decodeErr }

	session.username = username
	session.token = token

	return nil
}

/*
	Submit Task:
		prompt for the payload, generate a task id and submit. the orchestrator
		answers TASK_ACCEPTED with the id regardless of worker availability
*/

func (session *ClientSession) SubmitTask() error {
	payload := ""
	if askErr := survey.AskOne(&survey.Input{ Message: "Describe the task payload:" }, &payload); askErr != nil { return askErr }

	submitted := task.Task{
		Id: "Task-" + uuid.NewString()[0:8],
		ClientId: session.username,
		Payload: payload,
		Status: task.Waiting,
	}

	env, encErr := wire.NewEnvelope(wire.SubmitTask, submitted)
	if encErr != nil { return encErr }
	if sendErr := session.send(env); sendErr != nil { return sendErr }

	reply, recvErr := session.recv()
	if recvErr != nil { return recvErr }

	if reply.Kind != wire.TaskAccepted {
		fmt.Println("Task submission failed.")
		return nil
	}

	acceptedId, decodeErr := wire.PayloadAs[string](reply)
	if decodeErr != nil { return decodeErr }

	fmt.Printf("Task submitted. Id: %s\n", acceptedId)
	return nil
}

/*
	Query Status:
		prompt for a task id and print the orchestrator's view of the record. an
		empty STATUS_REPLY means the id is unknown
*/

func (session *ClientSession) QueryStatus() error {
	id := ""
	if askErr := survey.AskOne(&survey.Input{ Message: "Task id:" }, &id); askErr != nil { return askErr }

	env, encErr := wire.NewEnvelope(wire.QueryStatus, id)
	if encErr != nil { return encErr }
	if sendErr := session.send(env); sendErr != nil { return sendErr }

	reply, recvErr := session.recv()
	if recvErr != nil { return recvErr }

	if reply.Kind != wire.StatusReply || !wire.HasPayload(reply) {
		fmt.Println("Task not found.")
		return nil
	}

	queried, decodeErr := wire.PayloadAs[task.Task](reply)
	if decodeErr != nil { return decodeErr }

	workerId := queried.WorkerId
	if workerId == "" { workerId = "N/A" }

	fmt.Println("\n--- Task Status ---")
	fmt.Printf("Id: %s\n", queried.Id)
	fmt.Printf("Status: %s\n", queried.Status)
	fmt.Printf("Worker: %s\n", workerId)
	fmt.Printf("Lamport: %d\n", queried.Lamport)
	fmt.Println("-------------------")

	return nil
}

func (session *ClientSession) send(env *wire.Envelope) error {
	env.Token = session.token
	env.Lamport = session.clock.Tick()

	return session.frame.Send(env)
}

func (session *ClientSession) recv() (*wire.Envelope, error) {
	reply, recvErr := session.frame.Recv()
	if recvErr != nil { return nil, recvErr }

	if reply.Lamport > 0 { session.clock.Merge(reply.Lamport) }
	return reply, nil
}
