package main

import (
	"context"
	"os"

	"github.com/harrisonrobin/invoicer/pkg/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], cli.DefaultEnv()))
}
