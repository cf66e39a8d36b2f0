package main

import "github.com/KaramelBytes/custinsights-cli/cmd"

func main() {
	cmd.Execute()
}
