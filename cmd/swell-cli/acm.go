package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swell-network/swell-core/internal/rpc"
)

// ── status ──────────────────────────────────────────────────────────────

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show deployment, pause flags and configured addresses",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var info rpc.ProtocolInfoResult
			if err := call("protocol_getInfo", nil, &info); err != nil {
				return err
			}
			var st rpc.ACMStateResult
			if err := call("acm_getState", nil, &st); err != nil {
				return err
			}
			var sw rpc.SwETHInfoResult
			if err := call("sweth_getInfo", nil, &sw); err != nil {
				return err
			}
			if printJSON(map[string]interface{}{"protocol": info, "acm": st, "sweth": sw}) {
				return nil
			}

			fmt.Printf("Version:           %s\n", info.Version)
			fmt.Printf("Events:            %d\n", info.Events)
			fmt.Printf("Manager:           %s\n", st.Address)
			fmt.Printf("Admins:            %s\n", strings.Join(st.Admins, ", "))
			fmt.Printf("Treasury:          %s\n", st.SwellTreasury)
			fmt.Printf("swETH:             %s\n", st.SwETH)
			fmt.Printf("Deposit manager:   %s\n", st.DepositManager)
			fmt.Printf("Operator registry: %s\n", st.NodeOperatorRegistry)
			fmt.Println()
			fmt.Printf("Paused:            core=%t bot=%t operator=%t withdrawals=%t\n",
				st.Paused.Core, st.Paused.Bot, st.Paused.Operator, st.Paused.Withdrawals)
			fmt.Println()
			fmt.Printf("Total supply:      %s swETH\n", formatEther(sw.TotalSupply))
			fmt.Printf("Pooled ETH:        %s ETH\n", formatEther(sw.TotalPooledAsset))
			fmt.Printf("Deposited ETH:     %s ETH\n", formatEther(sw.TotalETHDeposited))
			fmt.Printf("swETH/ETH rate:    %s\n", formatEther(sw.SwETHToETHRate))
			fmt.Printf("Holders:           %d\n", sw.Holders)
			return nil
		},
	}
}

// ── pause / unpause ─────────────────────────────────────────────────────

func pauseCommand(pause bool) *cobra.Command {
	use, method := "unpause", "acm_unpause"
	if pause {
		use, method = "pause", "acm_pause"
	}
	return &cobra.Command{
		Use:       use + " <core|bot|operator|withdrawals>",
		Short:     strings.ToUpper(use[:1]) + use[1:] + " a method category",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"core", "bot", "operator", "withdrawals"},
		RunE: func(_ *cobra.Command, args []string) error {
			var ok bool
			if err := call(method, rpc.PauseParam{From: fromAddr, Category: args[0]}, &ok); err != nil {
				return err
			}
			fmt.Printf("%s methods paused: %t\n", args[0], pause)
			return nil
		},
	}
}

// ── set ─────────────────────────────────────────────────────────────────

func setCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update a configured protocol address",
	}
	targets := []struct {
		use, method, label string
	}{
		{"treasury", "acm_setSwellTreasury", "Swell treasury"},
		{"sweth", "acm_setSwETH", "swETH"},
		{"deposit-manager", "acm_setDepositManager", "Deposit manager"},
		{"node-operator-registry", "acm_setNodeOperatorRegistry", "Node operator registry"},
	}
	for _, t := range targets {
		t := t
		cmd.AddCommand(&cobra.Command{
			Use:   t.use + " <address>",
			Short: "Set the " + t.label + " address",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var ok bool
				if err := call(t.method, rpc.SetAddressParam{From: fromAddr, Address: args[0]}, &ok); err != nil {
					return err
				}
				fmt.Printf("%s set to %s\n", t.label, args[0])
				return nil
			},
		})
	}
	return cmd
}

// ── rescue ──────────────────────────────────────────────────────────────

func rescueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rescue <token>",
		Short: "Sweep the manager's balance of an ERC-20 token to the treasury",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var res rpc.RescueResult
			if err := call("acm_rescueERC20", rpc.RescueParam{From: fromAddr, Token: args[0]}, &res); err != nil {
				return err
			}
			if printJSON(res) {
				return nil
			}
			fmt.Printf("Rescued %s base units to %s\n", res.Amount, res.Treasury)
			return nil
		},
	}
}

// ── admin ───────────────────────────────────────────────────────────────

func adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the platform admin role",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "grant <address>",
			Short: "Grant the admin role",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var ok bool
				if err := call("acm_grantAdmin", rpc.SetAddressParam{From: fromAddr, Address: args[0]}, &ok); err != nil {
					return err
				}
				fmt.Printf("Admin role granted to %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "revoke <address>",
			Short: "Revoke the admin role",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var ok bool
				if err := call("acm_revokeAdmin", rpc.SetAddressParam{From: fromAddr, Address: args[0]}, &ok); err != nil {
					return err
				}
				fmt.Printf("Admin role revoked from %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "check <address>",
			Short: "Report whether an address holds the admin role",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				var isAdmin bool
				if err := call("acm_isAdmin", rpc.AddressParam{Address: args[0]}, &isAdmin); err != nil {
					return err
				}
				fmt.Printf("%s admin: %t\n", args[0], isAdmin)
				return nil
			},
		},
	)
	return cmd
}
