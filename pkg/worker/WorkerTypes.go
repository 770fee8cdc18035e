package worker

import "math/rand"
import "time"

import "github.com/jonboulle/clockwork"

import "github.com/sirgallo/conductor/pkg/wire"


type WorkerOpts struct {
	Host string
	Port int

	HeartbeatInterval time.Duration

	MinProcessing time.Duration
	MaxProcessing time.Duration
	CrashPercent int

	// WallClock is injectable for tests, defaults to the real clock
	WallClock clockwork.Clock

	// Exit overrides process termination in tests
	Exit func(code int)
}

type WorkerNode struct {
	Id string

	address string
	heartbeatInterval time.Duration

	minProcessing time.Duration
	maxProcessing time.Duration
	crashPercent int

	wallClock clockwork.Clock
	exit func(code int)
	random *rand.Rand

	frame *wire.FrameConn
}
