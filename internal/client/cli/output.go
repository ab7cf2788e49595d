package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

func printSuccess(w io.Writer, format string, a ...any) {
	successColor.Fprintf(w, format+"\n", a...)
}

func printError(w io.Writer, format string, a ...any) {
	errorColor.Fprintf(w, "Error: "+format+"\n", a...)
}

func printInfo(w io.Writer, format string, a ...any) {
	infoColor.Fprintf(w, format+"\n", a...)
}

func statusColor(status string) *color.Color {
	switch status {
	case "unlocked":
		return successColor
	case "locked":
		return warnColor
	default:
		return errorColor
	}
}

func printStatus(w io.Writer, status string) {
	fmt.Fprint(w, "Vault: ")
	statusColor(status).Fprintln(w, status)
}
