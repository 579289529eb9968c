package main

import (
	"fmt"
	"os"
)

var server srv

func main() {
	server.loadApp()

	if err := server.app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
