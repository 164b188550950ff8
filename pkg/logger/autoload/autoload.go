// Package autoload initializes the global logger from the LOG_* environment
// on import. Import it for its side effect from package main.
package autoload

import (
	configx "github.com/jobscout-ai/jobscout/pkg/config"
	logx "github.com/jobscout-ai/jobscout/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
