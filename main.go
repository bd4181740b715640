package main

import (
	"github.com/ohtomi/aws-cloudformation-generator/cmd"

	// Built-in vaporfiles.
	_ "github.com/ohtomi/aws-cloudformation-generator/sample"
)

func main() {
	cmd.Execute()
}
