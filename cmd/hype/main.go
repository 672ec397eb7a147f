package main

import "hypeos/cmd/hype/root"

func main() {
	root.Execute()
}
