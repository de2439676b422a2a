package main

import "github.com/sota-ai/sotanews/cmd"

func main() {
	cmd.Execute()
}
