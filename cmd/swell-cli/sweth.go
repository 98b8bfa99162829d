package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swell-network/swell-core/internal/rpc"
)

func depositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit ETH for swETH (amount in wei, or e.g. 1.5eth)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			value, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			var res rpc.DepositResult
			if err := call("sweth_deposit", rpc.DepositParam{From: fromAddr, Value: value}, &res); err != nil {
				return err
			}
			if printJSON(res) {
				return nil
			}
			fmt.Printf("Deposited %s ETH, minted %s swETH\n", formatEther(value), formatEther(res.Minted))
			return nil
		},
	}
}

func balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the swETH balance of an address (default: --from)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			addr := fromAddr
			if len(args) == 1 {
				addr = args[0]
			}
			var res rpc.BalanceResult
			if err := call("sweth_balanceOf", rpc.AddressParam{Address: addr}, &res); err != nil {
				return err
			}
			if printJSON(res) {
				return nil
			}
			fmt.Printf("%s: %s swETH\n", res.Address, formatEther(res.Balance))
			return nil
		},
	}
}

func transferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer swETH (amount in base units, or e.g. 0.5eth)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			var ok bool
			if err := call("sweth_transfer", rpc.TransferParam{From: fromAddr, To: args[0], Amount: amount}, &ok); err != nil {
				return err
			}
			fmt.Printf("Transferred %s swETH to %s\n", formatEther(amount), args[0])
			return nil
		},
	}
}

func repriceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reprice <total-pooled>",
		Short: "Set the total pooled ETH backing swETH (in wei, or e.g. 105eth)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			total, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			var rate string
			if err := call("sweth_reprice", rpc.RepriceParam{From: fromAddr, Total: total}, &rate); err != nil {
				return err
			}
			fmt.Printf("Repriced: 1 swETH = %s ETH\n", formatEther(rate))
			return nil
		},
	}
}

func swethCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweth",
		Short: "Show swETH accounting totals and exchange rates",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var res rpc.SwETHInfoResult
			if err := call("sweth_getInfo", nil, &res); err != nil {
				return err
			}
			if printJSON(res) {
				return nil
			}
			fmt.Printf("Address:        %s\n", res.Address)
			fmt.Printf("Token:          %s (%s, %d decimals)\n", res.Name, res.Symbol, res.Decimals)
			fmt.Printf("Total supply:   %s\n", formatEther(res.TotalSupply))
			fmt.Printf("Pooled ETH:     %s\n", formatEther(res.TotalPooledAsset))
			fmt.Printf("Deposited ETH:  %s\n", formatEther(res.TotalETHDeposited))
			fmt.Printf("swETH -> ETH:   %s\n", formatEther(res.SwETHToETHRate))
			fmt.Printf("ETH -> swETH:   %s\n", formatEther(res.ETHToSwETHRate))
			fmt.Printf("Holders:        %d\n", res.Holders)
			fmt.Printf("State root:     %s\n", res.StateRoot)
			return nil
		},
	}
}
