package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/swell-network/swell-core/internal/rpc"
)

func tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage mock ERC-20 tokens",
	}
	cmd.AddCommand(
		tokenRegisterCommand(),
		&cobra.Command{
			Use:   "mint <token> <to> <amount>",
			Short: "Mint mock tokens (amount in base units)",
			Args:  cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				amount, err := parseAmount(args[2])
				if err != nil {
					return err
				}
				var res rpc.BalanceResult
				if err := call("token_mint", rpc.TokenMintParam{Token: args[0], To: args[1], Amount: amount}, &res); err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				fmt.Printf("Minted %s; %s now holds %s\n", amount, res.Address, res.Balance)
				return nil
			},
		},
		&cobra.Command{
			Use:   "transfer <token> <to> <amount>",
			Short: "Transfer mock tokens from --from",
			Args:  cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				amount, err := parseAmount(args[2])
				if err != nil {
					return err
				}
				var ok bool
				params := rpc.TransferParam{From: fromAddr, Token: args[0], To: args[1], Amount: amount}
				if err := call("token_transfer", params, &ok); err != nil {
					return err
				}
				fmt.Printf("Transferred %s to %s\n", amount, args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "balance <token> [address]",
			Short: "Show a token balance (default: --from)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(_ *cobra.Command, args []string) error {
				addr := fromAddr
				if len(args) == 2 {
					addr = args[1]
				}
				var res rpc.BalanceResult
				if err := call("token_balanceOf", rpc.TokenBalanceParam{Token: args[0], Address: addr}, &res); err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				fmt.Printf("%s: %s\n", res.Address, res.Balance)
				return nil
			},
		},
		&cobra.Command{
			Use:   "info <token>",
			Short: "Show token metadata",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var res rpc.TokenInfoResult
				if err := call("token_getInfo", rpc.TokenParam{Token: args[0]}, &res); err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				printTokenInfo(res)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List registered tokens",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				var res rpc.TokenListResult
				if err := call("token_list", nil, &res); err != nil {
					return err
				}
				if printJSON(res) {
					return nil
				}
				if len(res.Tokens) == 0 {
					fmt.Println("No tokens registered.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ADDRESS\tSYMBOL\tDECIMALS\tSUPPLY")
				for _, t := range res.Tokens {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Address, t.Symbol, t.Decimals, formatUnits(t.TotalSupply, int(t.Decimals)))
				}
				return w.Flush()
			},
		},
	)
	return cmd
}

func tokenRegisterCommand() *cobra.Command {
	var params rpc.TokenRegisterParam
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a mock token created by --from",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			params.From = fromAddr
			var res rpc.TokenInfoResult
			if err := call("token_register", params, &res); err != nil {
				return err
			}
			if printJSON(res) {
				return nil
			}
			printTokenInfo(res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&params.Name, "name", "", "Token name")
	f.StringVar(&params.Symbol, "symbol", "", "Token symbol")
	f.Uint8Var(&params.Decimals, "decimals", 18, "Token decimals")
	f.StringVar(&params.Address, "address", "", "Token address (default: derived from --from)")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func printTokenInfo(t rpc.TokenInfoResult) {
	fmt.Printf("Address:  %s\n", t.Address)
	fmt.Printf("Name:     %s\n", t.Name)
	fmt.Printf("Symbol:   %s\n", t.Symbol)
	fmt.Printf("Decimals: %d\n", t.Decimals)
	fmt.Printf("Creator:  %s\n", t.Creator)
	fmt.Printf("Supply:   %s\n", formatUnits(t.TotalSupply, int(t.Decimals)))
}
