package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// systemBrowser hands the checkout URL to the desktop's default browser.
type systemBrowser struct{}

func (systemBrowser) Open(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// printURL is the last resort: show the link so the user can open it by hand.
type printURL struct {
	w io.Writer
}

func (p printURL) Open(_ context.Context, url string) error {
	_, err := fmt.Fprintf(p.w, "Complete your payment at: %s\n", url)
	return err
}
