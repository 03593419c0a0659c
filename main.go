package main

import "github.com/SafeMPC/custody-signer/cmd"

func main() {
	cmd.Execute()
}
