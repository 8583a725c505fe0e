package main

import "github.com/swipetrade/perps-service/cmd"

func main() {
	cmd.Execute()
}
