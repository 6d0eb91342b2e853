package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/artemshloyda/aspectcrop/internal/cli"
)

func main() {
	root := cli.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(cli.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
