package config

import "time"


type Config struct {
	ClientPort int
	WorkerPort int
	SyncPort int

	PrimaryHost string
	StandbyHost string

	HeartbeatTimeout time.Duration
	HeartbeatInterval time.Duration
	FailoverTimeout time.Duration
	ReconnectBackoff time.Duration

	Credentials map[string]string

	WorkerMinProcessing time.Duration
	WorkerMaxProcessing time.Duration
	WorkerCrashPercent int
}
