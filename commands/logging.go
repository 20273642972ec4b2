package commands

import (
	"os"
	"strings"

	"pvelist/config"

	log "github.com/sirupsen/logrus"
)

// setupLog configures log output level with "INFO" as default
func setupLog(conf *config.Config) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableQuote: true,
	})
	logLevel := strings.ToUpper(conf.LogLevel)
	if logLevel == "DEBUG" {
		log.SetLevel(log.DebugLevel)

	} else if logLevel == "ERROR" {
		log.SetLevel(log.ErrorLevel)

	} else {
		log.SetLevel(log.InfoLevel)
	}

	log.Debugf("Log Level: %v", log.GetLevel())
}
