package main

import (
	"fmt"

	"github.com/osorio/projscan/internal/cli"
	"github.com/osorio/projscan/internal/utils"
)

const (
	loggerInitializationFailedFormat  = "failed to initialize logger: %w"
	applicationExecutionFailedMessage = "projscan failed"
)

// main is the entry point for the projscan command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(loggerInitializationFailedFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(applicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
