package main

import (
	"os"

	soapycmder "github.com/papercomputeco/soapy/cmd/soapy"
)

func main() {
	cmd := soapycmder.NewSoapyCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
