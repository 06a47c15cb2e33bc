package main

import (
	"fmt"
	"os"
	"strings"

	"murmur/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: murmur-ctl <start|stop|status|devices|test> [arg]")
		os.Exit(2)
	}

	cmd := os.Args[1]
	arg := strings.Join(os.Args[2:], " ")

	out, err := ipc.Send(cmd, arg)
	if err != nil {
		if out != "" {
			fmt.Println(out)
		}
		fmt.Println("murmur not running:", err)
		os.Exit(1)
	}
	if out != "" {
		fmt.Println(out)
	}
}
