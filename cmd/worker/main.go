package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker simulate|snapshot|watch [flags]")
	}

	var err error
	switch os.Args[1] {
	case "simulate":
		err = RunSimulate(os.Args[2:], os.Stdout)
	case "snapshot":
		err = RunSnapshot(os.Args[2:], os.Stdout)
	case "watch":
		err = RunWatch(os.Args[2:], os.Stdout)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
