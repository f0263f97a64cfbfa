//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVT turns on virtual terminal processing so arrow keys arrive as ANSI
// sequences and the picker's escape codes are interpreted by the console.
func enableVT() {
	hIn := windows.Handle(os.Stdin.Fd())
	var inMode uint32
	if windows.GetConsoleMode(hIn, &inMode) == nil {
		_ = windows.SetConsoleMode(hIn, inMode|windows.ENABLE_VIRTUAL_TERMINAL_INPUT)
	}

	hOut := windows.Handle(os.Stdout.Fd())
	var outMode uint32
	if windows.GetConsoleMode(hOut, &outMode) == nil {
		_ = windows.SetConsoleMode(hOut, outMode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
	}
}
