package main

import (
	"log"

	"github.com/zazer0/resume-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
