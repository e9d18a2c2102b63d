package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
)

// terminalNotifier renders desktop notifications as a colored banner.
// Permission is granted on first request, mirroring a user accepting the
// browser prompt.
type terminalNotifier struct {
	granted bool
}

func (n *terminalNotifier) RequestPermission() {
	n.granted = true
}

func (n *terminalNotifier) PermissionGranted() bool {
	return n.granted
}

func (n *terminalNotifier) Show(title, body, _ string) error {
	banner := color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf(" %s ", title))
	fmt.Fprintf(os.Stdout, "\n%s\n %s\n", banner, body)
	return nil
}

// bellPlayer maps every named sound to the terminal bell.
type bellPlayer struct{}

func (bellPlayer) Play(string) error {
	fmt.Fprint(os.Stdout, "\a")
	return nil
}
