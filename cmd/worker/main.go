package main

import "os"
import "strconv"

import "github.com/sirgallo/conductor/pkg/config"
import "github.com/sirgallo/conductor/pkg/logger"
import "github.com/sirgallo/conductor/pkg/worker"


const NAME = "Main"
var Log = clog.NewCustomLog(NAME)


func main() {
	conf, confErr := config.LoadConfig()
	if confErr != nil { Log.Fatal("unable to load configuration:", confErr.Error()) }

	host := conf.PrimaryHost
	port := conf.WorkerPort

	if len(os.Args) >= 3 {
		host = os.Args[1]

		parsed, parseErr := strconv.Atoi(os.Args[2])
		if parseErr != nil { Log.Fatal("usage: worker <host> <port>") }
		port = parsed
	}

	node := worker.NewWorkerNode(worker.WorkerOpts{
		Host: host,
		Port: port,
		HeartbeatInterval: conf.HeartbeatInterval,
		MinProcessing: conf.WorkerMinProcessing,
		MaxProcessing: conf.WorkerMaxProcessing,
		CrashPercent: conf.WorkerCrashPercent,
	})

	if startErr := node.StartWorkerNode(); startErr != nil {
		Log.Fatal("worker stopped:", startErr.Error())
	}
}
