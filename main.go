package main

import "github.com/hbomb79/mediaprobe/cmd"

func main() {
	cmd.Execute()
}
