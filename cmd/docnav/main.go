package main

import "github.com/dgallion1/docnav/internal/cli"

func main() {
	cli.Execute()
}
