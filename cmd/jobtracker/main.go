package main

import (
	"context"
	"jobtracker-backend/cmd/jobtracker/commands"
	"jobtracker-backend/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
