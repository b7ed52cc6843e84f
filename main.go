package main

import "github.com/kiesman99/leptile/cmd"

func main() {
	cmd.Execute()
}
