//go:build headless

package main

import (
	"errors"

	"github.com/oliverbestmann/edlview/orion"
)

func runWindow(orion.RunOptions) error {
	return errors.New("built without window support, use -headless")
}
