package main

import "weekly-agenda-api/cmd/server/cmd"

func main() {
	cmd.Execute()
}
