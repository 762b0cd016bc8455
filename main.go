package main

import "loadcompose/cmd"

func main() {
	cmd.Execute()
}
