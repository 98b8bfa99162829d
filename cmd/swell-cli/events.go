package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swell-network/swell-core/internal/rpc"
)

func eventsCommand() *cobra.Command {
	var params rpc.LogsParam
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show committed protocol events",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var res rpc.LogsResult
			if err := call("events_getLogs", params, &res); err != nil {
				return err
			}
			if printJSON(res) {
				return nil
			}
			for _, l := range res.Logs {
				args, _ := json.Marshal(l.Args)
				fmt.Printf("#%-5d %s %-28s %s\n", l.Seq, l.Address.Hex(), l.Name, args)
			}
			fmt.Printf("(%d shown, head %d)\n", len(res.Logs), res.Head)
			return nil
		},
	}
	f := cmd.Flags()
	f.Uint64Var(&params.FromSeq, "from-seq", 0, "First sequence number")
	f.StringVar(&params.Address, "address", "", "Only logs emitted by this contract")
	f.StringVar(&params.Event, "event", "", "Only logs with this event name")
	f.IntVar(&params.Limit, "limit", 100, "Maximum number of logs")
	return cmd
}
