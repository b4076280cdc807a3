package main

import (
	"github.com/splitledger/splitledger/internal/cli"
	"github.com/splitledger/splitledger/pkg/logging"
)

func main() {
	logging.Setup()
	cli.Execute()
}
