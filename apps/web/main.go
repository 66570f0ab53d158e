package main

import (
	"log"
	"os"

	"github.com/darasahq/darasa/core"
	logsvc "github.com/darasahq/darasa/services/logger"

	echoweb "github.com/darasahq/darasa/apps/web/echo"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		rb := logsvc.NewRollbarLogger(std, conf)
		rb.Enable(true)
		logger = rb
	}

	logger.Info("serving " + conf.Web.DistDir + " on " + conf.Web.Addr)

	server := echoweb.NewServer(&echoweb.Options{
		Addr:    conf.Web.Addr,
		DistDir: conf.Web.DistDir,
		Debug:   conf.Debug,
	})
	server.Start()
}
