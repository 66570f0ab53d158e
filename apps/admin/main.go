package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/services/graphql"
	logsvc "github.com/darasahq/darasa/services/logger"
	"github.com/darasahq/darasa/storage/credfile"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		rb := logsvc.NewRollbarLogger(std, conf)
		rb.Enable(true)
		logger = rb
	}

	validate := validator.New()
	core.InitValidators(validate, newTranslator())

	store := credfile.NewStore(conf.CredentialsPath)
	api := graphql.NewClient(graphql.OptionsFromConfig(conf, store))
	sess := session.NewManager(store, api, validate, logger)

	cli := &commandLine{sess: sess, api: api, out: os.Stdout}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		logger.Fatal(err.Error(), err)
	}
}

func newTranslator() ut.Translator {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	return translator
}
