package main

import (
	"os"

	"github.com/FirasKoutari/RAG-multi-tenant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
