package config

import "strings"
import "time"

import "github.com/spf13/viper"


//=========================================== Config


/*
	Load Config:
		1.) seed every value with its default
		2.) overlay an optional conductor.yml from the working directory
		3.) overlay CONDUCTOR_* environment variables

		a missing config file is not an error, any other read failure is
*/

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("client.port", 5000)
	v.SetDefault("worker.port", 5001)
	v.SetDefault("sync.port", 5002)

	v.SetDefault("primary.host", "localhost")
	v.SetDefault("standby.host", "localhost")

	v.SetDefault("heartbeat.timeout", 10 * time.Second)
	v.SetDefault("heartbeat.interval", 5 * time.Second)
	v.SetDefault("failover.timeout", 15 * time.Second)
	v.SetDefault("reconnect.backoff", 5 * time.Second)

	v.SetDefault("credentials", map[string]string{
		"cliente1": "senha123",
		"cliente2": "senha456",
	})

	v.SetDefault("processing.min", 2 * time.Second)
	v.SetDefault("processing.max", 10 * time.Second)
	v.SetDefault("processing.crashpercent", 20)

	v.SetConfigName("conductor")
	v.SetConfigType("yml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONDUCTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if readErr := v.ReadInConfig(); readErr != nil {
		if _, notFound := readErr.(viper.ConfigFileNotFoundError); !notFound { return nil, readErr }
	}

	return &Config{
		ClientPort: v.GetInt("client.port"),
		WorkerPort: v.GetInt("worker.port"),
		SyncPort: v.GetInt("sync.port"),
		PrimaryHost: v.GetString("primary.host"),
		StandbyHost: v.GetString("standby.host"),
		HeartbeatTimeout: v.GetDuration("heartbeat.timeout"),
		HeartbeatInterval: v.GetDuration("heartbeat.interval"),
		FailoverTimeout: v.GetDuration("failover.timeout"),
		ReconnectBackoff: v.GetDuration("reconnect.backoff"),
		Credentials: v.GetStringMapString("credentials"),
		WorkerMinProcessing: v.GetDuration("processing.min"),
		WorkerMaxProcessing: v.GetDuration("processing.max"),
		WorkerCrashPercent: v.GetInt("processing.crashpercent"),
	}, nil
}
