package lamport

import "sync"


type LamportClock struct {
	mutex sync.Mutex
	time uint64
}
