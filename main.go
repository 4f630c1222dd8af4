package main

import "github.com/vibast-solutions/ms-go-receipts/cmd"

func main() {
	cmd.Execute()
}
