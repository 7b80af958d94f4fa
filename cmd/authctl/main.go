package main

import (
	"github.com/goliatone/go-auth-client/cmd/authctl/cli"
)

func main() {
	cli.InitAndExecute()
}
