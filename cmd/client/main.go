package main

import "storysync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
