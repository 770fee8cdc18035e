package lamport


//=========================================== Lamport Clock


/*
	initialize the logical clock

	the clock is a single process wide counter. every outgoing message is stamped
	under the same critical section that advanced the counter, so any observer of
	a single outbound stream sees non-decreasing timestamps
*/

func NewLamportClock() *LamportClock {
	return &LamportClock{
		time: 0,
	}
}

/*
	Tick:
		advance the clock for a local event and return the new value
*/

func (clock *LamportClock) Tick() uint64 {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()

	clock.time++
	return clock.time
}

/*
	Merge:
		fold a remote timestamp into the clock on receive

		local time becomes max(local, remote) + 1, which preserves the
		happened-before relation across a message chain
*/

func (clock *LamportClock) Merge(received uint64) uint64 {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()

	if received > clock.time { clock.time = received }
	clock.time++

	return clock.time
}

/*
	Read:
		return the current value without advancing
*/

func (clock *LamportClock) Read() uint64 {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()

	return clock.time
}
