package cmd

import (
	"errors"
	"os"

	"github.com/hashicorp/hcl2/hcl"
	"golang.org/x/term"

	"github.com/ohtomi/aws-cloudformation-generator/config"
	"github.com/ohtomi/aws-cloudformation-generator/vaporfile"
)

// parser is shared by everything a command reads, so that diagnostics can
// always be printed with source snippets.
var parser = config.NewParser()

// errDiagnostics is returned by commands whose errors have already been
// printed as diagnostics.
var errDiagnostics = errors.New("there were errors; see above")

func printDiagnostics(diags hcl.Diagnostics) {
	if len(diags) == 0 {
		return
	}

	width := 78
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	if isTTY {
		newWidth, _, err := term.GetSize(int(os.Stderr.Fd()))
		if err == nil {
			width = newWidth
		}
	}
	printer := hcl.NewDiagnosticTextWriter(os.Stderr, parser.Files(), uint(width), isTTY)
	printer.WriteDiagnostics(diags)
}

// diagnosticsOf prints the diagnostics carried by err, if any, and returns
// the error the command should fail with.
func diagnosticsOf(err error) error {
	var diagsErr *vaporfile.DiagnosticsError
	if errors.As(err, &diagsErr) {
		printDiagnostics(diagsErr.Diags)
		return errDiagnostics
	}
	return err
}
