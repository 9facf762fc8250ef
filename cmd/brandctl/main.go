package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"brandstudio/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if domain.IsAuthorization(err) {
			fmt.Fprintln(os.Stderr, "hint: the API key was rejected; set a valid GEMINI_API_KEY and retry")
		}
		os.Exit(1)
	}
}
