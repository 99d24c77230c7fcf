package main

import "github.com/KaramelBytes/logcompose/cmd"

func main() {
	cmd.Execute()
}
