package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swell-network/swell-core/internal/rpc"
)

func whitelistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Inspect and manage the deposit whitelist",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the whitelist owner and member count",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				var res rpc.WhitelistInfoResult
				if err := call("whitelist_getInfo", nil, &res); err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				fmt.Printf("Contract: %s\n", res.Contract)
				fmt.Printf("Owner:    %s\n", res.Owner)
				fmt.Printf("Members:  %d\n", res.Members)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <address>...",
			Short: "Admit one or more addresses",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var res rpc.WhitelistAddResult
				var err error
				if len(args) == 1 {
					err = call("whitelist_add", rpc.SetAddressParam{From: fromAddr, Address: args[0]}, &res)
				} else {
					err = call("whitelist_batchAdd", rpc.BatchAddParam{From: fromAddr, Addresses: args}, &res)
				}
				if err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				fmt.Printf("Requested %d, whitelist now has %d members\n", res.Requested, res.Members)
				return nil
			},
		},
		&cobra.Command{
			Use:   "check <address>",
			Short: "Report whether an address is whitelisted",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var ok bool
				if err := call("whitelist_isWhitelisted", rpc.AddressParam{Address: args[0]}, &ok); err != nil {
					return err
				}
				fmt.Printf("%s whitelisted: %t\n", args[0], ok)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List whitelisted addresses",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				var res rpc.WhitelistListResult
				if err := call("whitelist_list", nil, &res); err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				if len(res.Addresses) == 0 {
					fmt.Println("Whitelist is empty.")
					return nil
				}
				for _, a := range res.Addresses {
					fmt.Println(a)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "transfer-ownership <address>",
			Short: "Hand the whitelist to a new owner",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var ok bool
				if err := call("whitelist_transferOwnership", rpc.SetAddressParam{From: fromAddr, Address: args[0]}, &ok); err != nil {
					return err
				}
				fmt.Printf("Whitelist ownership transferred to %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
