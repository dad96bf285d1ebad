package main

import "sonorus-backend/cmd"

func main() {
	cmd.Run()
}
