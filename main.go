// main is the entry point for the livemeasure CLI.
package main

import (
	"os"

	"github.com/huangsam/livemeasure/cmd"
	"github.com/huangsam/livemeasure/internal/contract"
	"github.com/huangsam/livemeasure/internal/persist"
)

func main() {
	cmd.SetStoreManager(persist.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	persist.CloseStore()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
	os.Exit(0)
}
