// swell-cli is a command-line client for interacting with a swelld node.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swell-network/swell-core/config"
	"github.com/swell-network/swell-core/internal/rpcclient"
)

// defaultFrom is dev account 0, the default admin of a dev node.
const defaultFrom = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

var (
	rpcURL     string
	fromAddr   string
	jsonOutput bool
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "swell-cli",
		Short:         "Command-line client for a swelld node",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&rpcURL, "rpc", "http://127.0.0.1:8545", "RPC endpoint")
	pf.StringVar(&fromAddr, "from", defaultFrom, "Caller address for state-changing calls")
	pf.BoolVar(&jsonOutput, "json", false, "Print raw JSON results")

	root.AddCommand(
		statusCommand(),
		pauseCommand(true),
		pauseCommand(false),
		setCommand(),
		rescueCommand(),
		adminCommand(),
		whitelistCommand(),
		depositCommand(),
		balanceCommand(),
		transferCommand(),
		repriceCommand(),
		swethCommand(),
		tokenCommand(),
		eventsCommand(),
	)
	return root
}

func client() *rpcclient.Client {
	return rpcclient.New(rpcURL)
}

// call invokes method and decodes the result into result. Reverts are
// reported with their custom-error name.
func call(method string, params, result interface{}) error {
	if err := client().Call(method, params, result); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// printJSON pretty-prints v when --json is set and reports whether it did.
func printJSON(v interface{}) bool {
	if !jsonOutput {
		return false
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode output: %v\n", err)
		return true
	}
	fmt.Println(string(data))
	return true
}
