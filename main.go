package main

import "github.com/pcahill/strum/internal/cli"

func main() {
	cli.Execute()
}
