package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) seedZones() error {
	n, err := cli.zoneSvc.Seed(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d zones created\n", n)
	return nil
}
