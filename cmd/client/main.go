package main

import "os"
import "strconv"

import "github.com/sirgallo/conductor/pkg/client"
import "github.com/sirgallo/conductor/pkg/config"
import "github.com/sirgallo/conductor/pkg/logger"


const NAME = "Main"
var Log = clog.NewCustomLog(NAME)


func main() {
	conf, confErr := config.LoadConfig()
	if confErr != nil { Log.Fatal("unable to load configuration:", confErr.Error()) }

	host := conf.PrimaryHost
	port := conf.ClientPort

	if len(os.Args) >= 3 {
		host = os.Args[1]

		parsed, parseErr := strconv.Atoi(os.Args[2])
		if parseErr != nil { Log.Fatal("usage: client <host> <port>") }
		port = parsed
	}

	session := client.NewClientSession(client.ClientOpts{
		Host: host,
		Port: port,
	})

	if sessionErr := session.StartClientSession(); sessionErr != nil {
		Log.Fatal("client session ended:", sessionErr.Error())
	}
}
