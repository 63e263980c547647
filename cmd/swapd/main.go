// cmd/swapd/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/multihub-labs/multihub-client/internal/app"
	"github.com/multihub-labs/multihub-client/internal/export"
	"github.com/multihub-labs/multihub-client/internal/swap"
)

const usage = `usage: swapd <command> [flags]

commands:
  quote         price a swap without submitting
  swap          execute a swap
  stake         stake tokens into the program vault
  unstake       unstake tokens, settling pending rewards
  harvest       pay out accrued staking rewards
  stake-status  show the wallet's stake record and projected rewards
  history       list recent swaps (requires postgres_url)

common flags:
  -config path  config file (default configs/config.yaml)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "quote":
		err = runQuote(os.Args[2:])
	case "swap":
		err = runSwap(os.Args[2:])
	case "stake":
		err = runStake(os.Args[2:], "stake")
	case "unstake":
		err = runStake(os.Args[2:], "unstake")
	case "harvest":
		err = runHarvest(os.Args[2:])
	case "stake-status":
		err = runStakeStatus(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "swapd: %v\n", err)
		os.Exit(1)
	}
}

func swapFlags(fs *flag.FlagSet) (configPath *string, direction *string, amount *uint64, slippageBps *uint) {
	configPath = fs.String("config", "configs/config.yaml", "config file path")
	direction = fs.String("direction", "sol-to-yot", "sol-to-yot or yot-to-sol")
	amount = fs.Uint64("amount", 0, "input amount in minor units")
	slippageBps = fs.Uint("slippage-bps", 100, "slippage tolerance in basis points")
	return
}

func parseIntent(direction string, amount uint64, slippageBps uint) (swap.Intent, error) {
	var dir swap.Direction
	switch direction {
	case "sol-to-yot":
		dir = swap.DirectionSolToToken
	case "yot-to-sol":
		dir = swap.DirectionTokenToSol
	default:
		return swap.Intent{}, fmt.Errorf("unknown direction %q", direction)
	}
	if slippageBps > 10_000 {
		return swap.Intent{}, fmt.Errorf("slippage-bps must be within [0,10000]")
	}
	return swap.Intent{
		Direction:   dir,
		AmountIn:    amount,
		SlippageBps: uint16(slippageBps),
	}, nil
}

func runQuote(args []string) error {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	configPath, direction, amount, slippageBps := swapFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	intent, err := parseIntent(*direction, *amount, *slippageBps)
	if err != nil {
		return err
	}

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := runner.SignalContext(context.Background())
	defer cancel()

	plan, err := runner.Quote(ctx, intent)
	if err != nil {
		return err
	}

	fmt.Printf("direction:     %s\n", intent.Direction)
	fmt.Printf("amount in:     %d\n", intent.AmountIn)
	fmt.Printf("pool input:    %d\n", plan.PoolInput)
	fmt.Printf("contribution:  %d\n", plan.Contribution)
	fmt.Printf("expected out:  %d\n", plan.ExpectedOut)
	fmt.Printf("min out:       %d\n", plan.MinOut)
	fmt.Printf("rebate:        %d\n", plan.Rebate)
	if plan.Stale {
		fmt.Println("warning: node unreachable, priced against last known reserves")
	}
	return nil
}

func runSwap(args []string) error {
	fs := flag.NewFlagSet("swap", flag.ExitOnError)
	configPath, direction, amount, slippageBps := swapFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	intent, err := parseIntent(*direction, *amount, *slippageBps)
	if err != nil {
		return err
	}

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := runner.SignalContext(context.Background())
	defer cancel()

	sig, err := runner.Swap(ctx, intent)
	if err != nil {
		return err
	}

	fmt.Printf("confirmed: %s\n", sig)
	return nil
}

func runStake(args []string, command string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "config file path")
	amount := fs.Uint64("amount", 0, "amount in minor units")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := runner.SignalContext(context.Background())
	defer cancel()

	var sig solana.Signature
	if command == "stake" {
		sig, err = runner.Stake(ctx, *amount)
	} else {
		sig, err = runner.Unstake(ctx, *amount)
	}
	if err != nil {
		return err
	}

	fmt.Printf("confirmed: %s\n", sig)
	return nil
}

func runHarvest(args []string) error {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := runner.SignalContext(context.Background())
	defer cancel()

	sig, err := runner.Harvest(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("confirmed: %s\n", sig)
	return nil
}

func runStakeStatus(args []string) error {
	fs := flag.NewFlagSet("stake-status", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "config file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := runner.SignalContext(context.Background())
	defer cancel()

	projection, rates, err := runner.StakeStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("staked:           %d\n", projection.Record.StakedAmount)
	fmt.Printf("total harvested:  %d\n", projection.Record.TotalHarvested)
	fmt.Printf("projected reward: %d (as of %s)\n", projection.ProjectedReward, projection.AsOf.UTC().Format("2006-01-02 15:04:05"))
	fmt.Printf("can harvest:      %v\n", projection.CanHarvest)
	fmt.Printf("rate/day:         %s\n", rates.Daily)
	fmt.Printf("APR:              %s\n", rates.Yearly)
	fmt.Printf("APY:              %s\n", rates.APY)
	if projection.Stale {
		fmt.Println("warning: node unreachable, projected from last known record")
	}
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.yaml", "config file path")
	limit := fs.Int("limit", 20, "max records")
	exportFormat := fs.String("export", "", "export to file: csv or json")
	outputDir := fs.String("out", "exports", "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := runner.SignalContext(context.Background())
	defer cancel()

	records, err := runner.History(ctx, *limit)
	if err != nil {
		return err
	}

	if *exportFormat != "" {
		exporter := export.NewHistoryExporter(runner.Logger.Logger)
		path, err := exporter.Export(records, export.Options{
			Format:    export.Format(*exportFormat),
			OutputDir: *outputDir,
		})
		if err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", path)
		return nil
	}

	for _, record := range records {
		fmt.Printf("%s  %-12s  in=%d out>=%d  %s  %s\n",
			record.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			record.Direction,
			record.AmountIn,
			record.MinOut,
			record.Status,
			record.Signature)
	}
	return nil
}
