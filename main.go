package main

import "content-pipeline/cmd"

func main() {
	cmd.Execute()
}
