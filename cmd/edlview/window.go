//go:build !headless

package main

import "github.com/oliverbestmann/edlview/orion"

func runWindow(opts orion.RunOptions) error {
	return orion.Run(opts)
}
