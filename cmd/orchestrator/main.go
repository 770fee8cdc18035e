package main

import "fmt"

import "github.com/sirgallo/conductor/pkg/config"
import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/orchestrator"


const NAME = "Main"
var Log = clog.NewCustomLog(NAME)


func main() {
	conf, confErr := config.LoadConfig()
	if confErr != nil { Log.Fatal("unable to load configuration:", confErr.Error()) }

	orch := orchestrator.NewOrchestrator(orchestrator.OrchestratorOpts{
		ClientPort: conf.ClientPort,
		WorkerPort: conf.WorkerPort,
		StandbyAddress: fmt.Sprintf("%s:%d", conf.StandbyHost, conf.SyncPort),
		ReconnectBackoff: conf.ReconnectBackoff,
		HeartbeatTimeout: conf.HeartbeatTimeout,
		Credentials: conf.Credentials,
	})

	if startErr := orch.StartOrchestratorService(); startErr != nil {
		Log.Fatal("orchestrator stopped:", startErr.Error())
	}
}
