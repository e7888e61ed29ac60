package main

import "github.com/iksnae/iris-session/cmd"

func main() {
	cmd.Execute()
}
