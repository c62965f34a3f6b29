package main

import (
	"context"
	"fmt"

	"github.com/trezcool/msaada/core/award"
)

// sweep runs one escalation pass and prints the report; the API server runs
// the same pass periodically.
func (cli *commandLine) sweep() error {
	report, err := cli.awardSvc.Sweep(context.Background(), award.NowFunc().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("sweep complete: expired=%d notified=%t\n", report.Expired, report.Notified)
	return nil
}
