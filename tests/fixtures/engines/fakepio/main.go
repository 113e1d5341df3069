package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aretw0/pious/internal/testutils/fakepio"
)

func main() {
	crash := flag.Bool("crash", false, "exit before answering anything")
	hang := flag.String("hang", "", "verb that never answers")
	flag.Parse()

	fmt.Fprintln(os.Stderr, "fakepio started")
	if *crash {
		fmt.Fprintln(os.Stderr, "license check failed")
		os.Exit(3)
	}

	eng := fakepio.New()
	if *hang != "" {
		eng.Hang(*hang)
	}
	if err := eng.Serve(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "fakepio exiting")
}
