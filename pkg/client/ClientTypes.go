package client

import "github.com/sirgallo/conductor/pkg/lamport"
import "github.com/sirgallo/conductor/pkg/wire"


type ClientOpts struct {
	Host string
	Port int
}

type ClientSession struct {
	address string

	clock *lamport.LamportClock
	frame *wire.FrameConn

	username string
	token string
}
