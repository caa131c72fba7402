package main

import (
	"context"

	"housingprice/server/cmd/housingctl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
