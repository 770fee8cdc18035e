package registry

import "time"

import "github.com/jonboulle/clockwork"


//=========================================== Worker Registry


/*
	initialize the live worker set

	one mutex protects the ordered id list, the id --> info map and the round robin
	cursor. the cursor always satisfies 0 <= cursor < len(ordered) while workers
	exist and resets to 0 when the set empties
*/

func NewWorkerRegistry(clock clockwork.Clock) *WorkerRegistry {
	return &WorkerRegistry{
		workers: make(map[string]*WorkerInfo),
		clock: clock,
	}
}

/*
	Add:
		register a worker under its id

		re-registration of a live id is eviction first: the previous entry is
		removed and its sink closed before the new one is appended, so an id can
		never appear twice in the round robin order
*/

func (registry *WorkerRegistry) Add(id string, sink Sink) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	if _, exists := registry.workers[id]; exists { registry.removeLocked(id) }

	registry.ordered = append(registry.ordered, id)
	registry.workers[id] = &WorkerInfo{
		Id: id,
		Sink: sink,
		LastHeartbeat: registry.clock.Now(),
	}
}

/*
	Remove:
		evict a worker and close its sink. returns false when the id is unknown
*/

func (registry *WorkerRegistry) Remove(id string) bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	return registry.removeLocked(id)
}

func (registry *WorkerRegistry) removeLocked(id string) bool {
	info, exists := registry.workers[id]
	if !exists { return false }

	delete(registry.workers, id)
	info.Sink.Close()

	for idx, orderedId := range registry.ordered {
		if orderedId == id {
			registry.ordered = append(registry.ordered[:idx], registry.ordered[idx + 1:]...)
			if registry.cursor > idx { registry.cursor-- }
			break
		}
	}

	if len(registry.ordered) == 0 {
		registry.cursor = 0
	} else {
		registry.cursor = registry.cursor % len(registry.ordered)
	}

	return true
}

/*
	Next:
		pick the next worker id round robin and advance the cursor circularly
*/

func (registry *WorkerRegistry) Next() (string, error) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	if len(registry.ordered) == 0 { return "", ErrNoWorkers }

	id := registry.ordered[registry.cursor]
	registry.cursor = (registry.cursor + 1) % len(registry.ordered)

	return id, nil
}

/*
	Get:
		stable copy of a worker entry, sink included
*/

func (registry *WorkerRegistry) Get(id string) (WorkerInfo, bool) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	info, exists := registry.workers[id]
	if !exists { return WorkerInfo{}, false }

	return *info, true
}

/*
	Touch:
		record a heartbeat for a live worker
*/

func (registry *WorkerRegistry) Touch(id string) bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	info, exists := registry.workers[id]
	if !exists { return false }

	info.LastHeartbeat = registry.clock.Now()
	return true
}

/*
	Stale:
		ids of workers whose last heartbeat is older than the timeout, in
		registration order. used by the liveness sweep
*/

func (registry *WorkerRegistry) Stale(timeout time.Duration) []string {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	now := registry.clock.Now()

	var stale []string
	for _, id := range registry.ordered {
		if now.Sub(registry.workers[id].LastHeartbeat) > timeout { stale = append(stale, id) }
	}

	return stale
}

/*
	SnapshotIds:
		registration ordered copy of the live worker ids for replication
*/

func (registry *WorkerRegistry) SnapshotIds() []string {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	ids := make([]string, len(registry.ordered))
	copy(ids, registry.ordered)

	return ids
}

func (registry *WorkerRegistry) Size() int {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	return len(registry.ordered)
}

func (registry *WorkerRegistry) Cursor() int {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	return registry.cursor
}
