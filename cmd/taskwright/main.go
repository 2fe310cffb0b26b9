// Command taskwright is the maintenance-task engine for the Hearth
// home-assistant platform: it turns free-text task requirements into typed
// step plans, executes them in the background, and keeps an auditable
// execution history with rollback support.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
