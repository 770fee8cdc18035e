package main

import "github.com/sirgallo/conductor/pkg/config"
import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/standby"


const NAME = "Main"
var Log = clog.NewCustomLog(NAME)


func main() {
	conf, confErr := config.LoadConfig()
	if confErr != nil { Log.Fatal("unable to load configuration:", confErr.Error()) }

	service := standby.NewStandbyService(standby.StandbyOpts{
		SyncPort: conf.SyncPort,
		PrimaryHost: conf.PrimaryHost,
		PrimaryClientPort: conf.ClientPort,
		PrimaryWorkerPort: conf.WorkerPort,
		FailoverTimeout: conf.FailoverTimeout,
	})

	if startErr := service.StartStandbyService(); startErr != nil {
		Log.Fatal("standby stopped:", startErr.Error())
	}
}
