package main

import "github.com/jonandersen/etrade/cmd"

func main() {
	cmd.Execute()
}
