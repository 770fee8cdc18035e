package orchestrator


//=========================================== Liveness Monitor


/*
	Start Liveness Monitor:
		periodic sweep on the heartbeat deadline. this is the only detector of
		workers that are silent but still hold an open socket, dropped sockets are
		caught by the session handlers
*/

func (orch *Orchestrator) StartLivenessMonitor() {
	ticker := orch.wallClock.NewTicker(orch.HeartbeatTimeout)
	defer ticker.Stop()

	Log.Info("liveness monitor started | deadline:", orch.HeartbeatTimeout)

	for range ticker.Chan() {
		orch.SweepStaleWorkers()
	}
}

/*
	Sweep Stale Workers:
		evict every worker whose last heartbeat is older than the deadline
*/

func (orch *Orchestrator) SweepStaleWorkers() {
	for _, id := range orch.Workers.Stale(orch.HeartbeatTimeout) {
		Log.Warn("worker", id, "missed the heartbeat deadline, evicting")
		orch.HandleWorkerFailure(id)
	}
}
