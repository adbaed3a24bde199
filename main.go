package main

import "github.com/leonardomso/gfmlink/cmd"

// version is set by the release build at build time via ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
