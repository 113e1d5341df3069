package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// An engine that ignores exit, stdin EOF and termination signals.
func main() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintln(os.Stderr, "stubborn engine started")

	go func() {
		for s := range sigs {
			fmt.Fprintf(os.Stderr, "ignoring signal: %v\n", s)
		}
	}()
	go func() {
		_, _ = io.Copy(io.Discard, os.Stdin)
	}()

	for {
		time.Sleep(1 * time.Second)
	}
}
