package main

import mcwatchcmd "github.com/realDragonium/mcwatch/cmd"

func main() {
	mcwatchcmd.Main()
}
