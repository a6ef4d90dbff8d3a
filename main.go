package main

import "github.com/akari-env/akari/cmd"

func main() {
	cmd.Execute()
}
