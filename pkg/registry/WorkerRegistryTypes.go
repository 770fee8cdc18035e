package registry

import "errors"
import "sync"
import "time"

import "github.com/jonboulle/clockwork"

import "github.com/sirgallo/conductor/pkg/wire"


var ErrNoWorkers = errors.New("no workers registered")

// Sink is the send side of a worker connection. The registry owns closing it on
// eviction, the worker session handler owns the read side.
type Sink interface {
	Send(env *wire.Envelope) error
	Close() error
}

type WorkerInfo struct {
	Id string
	Sink Sink
	LastHeartbeat time.Time
}

type WorkerRegistry struct {
	mutex sync.Mutex
	ordered []string
	workers map[string]*WorkerInfo
	cursor int
	clock clockwork.Clock
}
