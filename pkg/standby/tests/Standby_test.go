package standbytests

import "testing"
import "time"

import "github.com/jonboulle/clockwork"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/conductor/pkg/standby"
import "github.com/sirgallo/conductor/pkg/task"
import "github.com/sirgallo/conductor/pkg/wire"


type probeStub struct {
	openPorts map[int]bool
	probed []int
}

func (stub *probeStub) probe(host string, port int) bool {
	stub.probed = append(stub.probed, port)
	return stub.openPorts[port]
}

func newStandby(stub *probeStub, failedOver *bool) (*standby.StandbyService, *clockwork.FakeClock) {
	fakeClock := clockwork.NewFakeClock()

	service := standby.NewStandbyService(standby.StandbyOpts{
		SyncPort: 5002,
		PrimaryHost: "localhost",
		PrimaryClientPort: 5000,
		PrimaryWorkerPort: 5001,
		FailoverTimeout: 15 * time.Second,
		WallClock: fakeClock,
		Probe: stub.probe,
		OnFailover: func() { *failedOver = true },
	})

	return service, fakeClock
}

func syncEnvelope(t *testing.T, state *wire.GlobalState) *wire.Envelope {
	env, encErr := wire.NewEnvelope(wire.SyncState, state)
	require.NoError(t, encErr)
	env.Lamport = state.Clock

	return env
}

func TestApplySyncStateOverwritesReplica(t *testing.T) {
	failedOver := false
	service, _ := newStandby(&probeStub{}, &failedOver)

	first := &wire.GlobalState{
		Tasks: map[string]*task.Task{
			"Task-aaa": { Id: "Task-aaa", Status: task.Running, WorkerId: "Worker-1", Lamport: 3 },
		},
		Workers: []string{ "Worker-1" },
		Clock: 4,
	}
	require.NoError(t, service.ApplyEnvelope(syncEnvelope(t, first)))

	second := &wire.GlobalState{
		Tasks: map[string]*task.Task{
			"Task-aaa": { Id: "Task-aaa", Status: task.Done, Lamport: 6 },
			"Task-bbb": { Id: "Task-bbb", Status: task.Waiting },
		},
		Workers: []string{ "Worker-1", "Worker-2" },
		Clock: 8,
	}
	require.NoError(t, service.ApplyEnvelope(syncEnvelope(t, second)))

	tasks, workers, clock := service.ReplicatedState()
	assert.Len(t, tasks, 2)
	assert.Equal(t, task.Done, tasks["Task-aaa"].Status)
	assert.Equal(t, []string{ "Worker-1", "Worker-2" }, workers)
	assert.Equal(t, uint64(8), clock)

	assert.Equal(t, standby.Replicating, service.Phase())
}

func TestNonSyncKindIsIgnored(t *testing.T) {
	failedOver := false
	service, _ := newStandby(&probeStub{}, &failedOver)

	env, encErr := wire.NewEnvelope(wire.Heartbeat, "Worker-1")
	require.NoError(t, encErr)

	require.NoError(t, service.ApplyEnvelope(env))

	tasks, _, _ := service.ReplicatedState()
	assert.Empty(t, tasks)
}

func TestCheckPrimaryWithinDeadline(t *testing.T) {
	failedOver := false
	stub := &probeStub{}
	service, fakeClock := newStandby(stub, &failedOver)

	fakeClock.Advance(14 * time.Second)

	assert.False(t, service.CheckPrimary())
	assert.Equal(t, standby.Replicating, service.Phase())
	assert.Empty(t, stub.probed)
	assert.False(t, failedOver)
}

func TestFalseAlarmResetsSilenceTimer(t *testing.T) {
	failedOver := false
	stub := &probeStub{ openPorts: map[int]bool{ 5000: true } }
	service, fakeClock := newStandby(stub, &failedOver)

	fakeClock.Advance(16 * time.Second)

	assert.False(t, service.CheckPrimary())
	assert.Equal(t, standby.Replicating, service.Phase())
	assert.False(t, failedOver)

	// the silence timer was reset, an immediate re-check finds no silence
	probedBefore := len(stub.probed)
	assert.False(t, service.CheckPrimary())
	assert.Equal(t, probedBefore, len(stub.probed))
}

func TestFailoverWhenBothPortsRefuse(t *testing.T) {
	failedOver := false
	stub := &probeStub{}
	service, fakeClock := newStandby(stub, &failedOver)

	require.NoError(t, service.ApplyEnvelope(syncEnvelope(t, &wire.GlobalState{
		Tasks: map[string]*task.Task{ "Task-aaa": { Id: "Task-aaa", Status: task.Waiting } },
		Clock: 2,
	})))

	fakeClock.Advance(16 * time.Second)

	assert.True(t, service.CheckPrimary())
	assert.Equal(t, standby.FailedOver, service.Phase())
	assert.True(t, failedOver)

	// both primary ports were probed before declaring failover
	assert.ElementsMatch(t, []int{ 5000, 5001 }, stub.probed)
}

func TestSyncResetsSuspicion(t *testing.T) {
	failedOver := false
	stub := &probeStub{ openPorts: map[int]bool{} }
	service, fakeClock := newStandby(stub, &failedOver)

	fakeClock.Advance(16 * time.Second)

	// a sync arriving right before the check clears the silence
	require.NoError(t, service.ApplyEnvelope(syncEnvelope(t, &wire.GlobalState{ Clock: 1 })))

	assert.False(t, service.CheckPrimary())
	assert.False(t, failedOver)
}
