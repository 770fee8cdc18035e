package clog

import "go.uber.org/zap"
import "go.uber.org/zap/zapcore"


//=========================================== Custom Log


/*
	initialize a named logger for a module

	each module creates its own logger with the module name attached, so interleaved
	output from the session handlers, the dispatcher and the timers can be told apart
*/

func NewCustomLog(name string) *CustomLog {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.DisableStacktrace = true

	logger, buildErr := config.Build()
	if buildErr != nil { logger = zap.NewNop() }

	return &CustomLog{
		Name: name,
		zLog: logger.Sugar().Named(name),
	}
}

func (cLog *CustomLog) Debug(msg ...interface{}) {
	cLog.zLog.Debug(msg...)
}

func (cLog *CustomLog) Error(msg ...interface{}) {
	cLog.zLog.Error(msg...)
}

func (cLog *CustomLog) Fatal(msg ...interface{}) {
	cLog.zLog.Fatal(msg...)
}

func (cLog *CustomLog) Info(msg ...interface{}) {
	cLog.zLog.Info(msg...)
}

func (cLog *CustomLog) Warn(msg ...interface{}) {
	cLog.zLog.Warn(msg...)
}
