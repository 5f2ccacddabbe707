package main

import "github.com/david-wiggs/jenkins-passthrough/cmd"

func main() {
	cmd.Execute()
}
