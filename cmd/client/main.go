package main

import "sampark/cmd/client/cmd"

func main() {
	cmd.Execute()
}
