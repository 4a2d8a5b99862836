// The main package for the mission-scraper executable.
package main

import (
	"github.com/JakeFAU/mission-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
