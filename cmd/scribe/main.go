package main

import "github.com/vietddude/scribe/internal/cli"

func main() {
	cli.Execute()
}
