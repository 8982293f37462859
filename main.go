package main

import "capstone/insights/cmd"

func main() {
	cmd.Execute()
}
