package clog

import "go.uber.org/zap"


type CustomLog struct {
	Name string
	zLog *zap.SugaredLogger
}
