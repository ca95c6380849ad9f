package main

import "github.com/notargets/gocoo/cmd"

func main() {
	cmd.Execute()
}
