package standby

import "fmt"
import "net"
import "time"


//=========================================== Failover Detector


const probeTimeout = 2 * time.Second


/*
	Start Failover Detector:
		periodic check at half the failover deadline. the detector moves between
		REPLICATING and SUSPECT on sync silence, and into the terminal FAILED_OVER
		phase once both primary ports refuse connections
*/

func (standby *StandbyService) StartFailoverDetector() {
	ticker := standby.wallClock.NewTicker(standby.FailoverTimeout / 2)
	defer ticker.Stop()

	Log.Info("failover detector started | deadline:", standby.FailoverTimeout)

	for range ticker.Chan() {
		if standby.CheckPrimary() { return }
	}
}

/*
	Check Primary:
		1.) within the deadline nothing to do
		2.) past the deadline, probe the primary's client and worker ports
		3.) both refused --> declare failover, emit the operator banner and hand off
			to the configured failover action (process exit by default)
		4.) either open --> false alarm, reset the silence timer

		returns true once the standby has failed over
*/

func (standby *StandbyService) CheckPrimary() bool {
	standby.mutex.Lock()
	silence := standby.wallClock.Now().Sub(standby.lastSync)
	if silence <= standby.FailoverTimeout {
		standby.mutex.Unlock()
		return false
	}

	standby.phase = Suspect
	standby.mutex.Unlock()

	Log.Warn("no sync from primary in", silence, "| probing primary ports")

	clientPortOpen := standby.probe(standby.PrimaryHost, standby.PrimaryClientPort)
	workerPortOpen := standby.probe(standby.PrimaryHost, standby.PrimaryWorkerPort)

	if clientPortOpen || workerPortOpen {
		Log.Info("primary still reachable, treating silence as a false alarm")
		standby.MarkSynced()
		return false
	}

	standby.mutex.Lock()
	standby.phase = FailedOver
	standby.mutex.Unlock()

	standby.emitFailoverBanner()
	standby.onFailover()

	return true
}

func (standby *StandbyService) emitFailoverBanner() {
	tasks, _, clock := standby.ReplicatedState()

	fmt.Println("---------------------------------------------------------")
	fmt.Println("FAILOVER: the primary orchestrator is unreachable.")
	fmt.Println("To complete the failover, start a new primary instance.")
	fmt.Printf("Replicated state held %d tasks at clock %d.\n", len(tasks), clock)
	fmt.Println("The standby will now stop.")
	fmt.Println("---------------------------------------------------------")
}

func probePort(host string, port int) bool {
	conn, dialErr := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), probeTimeout)
	if dialErr != nil { return false }

	conn.Close()
	return true
}
