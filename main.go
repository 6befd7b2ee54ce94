package main

import (
	"bootstrap/cmd"
)

// main is the program entry point. It delegates to cmd.Execute, which parses
// arguments, runs the provisioning stages and sets the exit status.
//
// bootstrap turns a fresh Linux or macOS account into a working development
// environment:
//   - installs a fixed catalog of tools with the system package manager,
//     from GitHub release assets or with a vendor install script
//   - clones the configuration repositories, one of them at a pinned revision
//   - links them into the configuration directory, keeping any existing
//     content as a .bak copy
//   - appends shell integration lines and makes the configured shell the
//     login shell
//
// Every step checks before it acts, so running it again on a provisioned
// machine changes nothing.
func main() {
	cmd.Execute()
}
