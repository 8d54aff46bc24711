package main

import "github.com/killallgit/easel/cmd"

func main() {
	cmd.Execute()
}
