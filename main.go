package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"taixiu/cmd"
	"taixiu/config"
	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/domain/services"
	"taixiu/domain/utils"

	log "github.com/sirupsen/logrus"
)

const usage = `usage:
  taixiu                                   run the engine
  taixiu migrate [up|down [n]|status]      manage the schema
  taixiu credit <admin-id> <account> <amt> credit an account
  taixiu force-roll <admin-id> <d1> <d2> <d3>
  taixiu promo <admin-id> <amount> <rounds> issue a promo code
  taixiu outcome-mode <admin-id> <mode>    kqtai|kqxiu|bettai|betxiu|tatbet
  taixiu top-balances <admin-id> [n]       list the richest accounts
  taixiu simulate [rounds]                 measure dice odds and payout return`

func main() {
	if len(os.Args) > 1 {
		var err error
		switch os.Args[1] {
		case "migrate":
			err = handleMigrationCommand(os.Args[2:])
		case "credit":
			err = handleCredit(os.Args[2:])
		case "force-roll":
			err = handleForceRoll(os.Args[2:])
		case "promo":
			err = handlePromo(os.Args[2:])
		case "outcome-mode":
			err = handleOutcomeMode(os.Args[2:])
		case "top-balances":
			err = handleTopBalances(os.Args[2:])
		case "simulate":
			err = handleSimulate(os.Args[2:])
		case "help", "-h", "--help":
			fmt.Println(usage)
			return
		default:
			err = fmt.Errorf("unknown command %q\n%s", os.Args[1], usage)
		}
		if err != nil {
			log.Fatalf("%s error: %v", os.Args[1], err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taixiu migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

func handleCredit(args []string) error {
	values, err := parseInts(args, 3, "usage: taixiu credit <admin-id> <account> <amount>")
	if err != nil {
		return err
	}

	return withEngine(func(ctx context.Context, engine *cmd.Engine) error {
		balance, err := engine.AdminCredit(ctx, values[0], values[1], values[2])
		if err != nil {
			return err
		}
		fmt.Printf("account %d balance: %s\n", values[1], utils.FormatAmount(balance))
		return nil
	})
}

func handleForceRoll(args []string) error {
	values, err := parseInts(args, 4, "usage: taixiu force-roll <admin-id> <d1> <d2> <d3>")
	if err != nil {
		return err
	}

	return withEngine(func(ctx context.Context, engine *cmd.Engine) error {
		summary, err := engine.ForceRoll(ctx, values[0], int(values[1]), int(values[2]), int(values[3]))
		if err != nil {
			return err
		}
		fmt.Printf("round %d rolled %s: %s, %d winners, house %+d, next round %d\n",
			summary.RoundID, summary.Dice.String(), summary.Outcome, len(summary.Winners), summary.HouseGain, summary.NextRoundID)
		return nil
	})
}

func handlePromo(args []string) error {
	values, err := parseInts(args, 3, "usage: taixiu promo <admin-id> <amount> <wager-rounds>")
	if err != nil {
		return err
	}

	return withEngine(func(ctx context.Context, engine *cmd.Engine) error {
		promo, err := engine.CreatePromoCode(ctx, values[0], values[1], int(values[2]))
		if err != nil {
			return err
		}
		fmt.Printf("promo %s: %s, withdrawable after %d rounds\n", promo.Code, utils.FormatAmount(promo.Amount), promo.WagerRounds)
		return nil
	})
}

func handleOutcomeMode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: taixiu outcome-mode <admin-id> <mode>")
	}
	adminID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid admin id %q: %w", args[0], err)
	}
	mode, err := entities.ParseOutcomeMode(args[1])
	if err != nil {
		return err
	}

	return withEngine(func(ctx context.Context, engine *cmd.Engine) error {
		if err := engine.SetOutcomeMode(ctx, adminID, mode); err != nil {
			return err
		}
		fmt.Printf("outcome mode: %s\n", mode)
		return nil
	})
}

func handleTopBalances(args []string) error {
	limit := int64(0)
	if len(args) == 2 {
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid count %q: %w", args[1], err)
		}
		limit = n
		args = args[:1]
	}
	values, err := parseInts(args, 1, "usage: taixiu top-balances <admin-id> [n]")
	if err != nil {
		return err
	}

	return withEngine(func(ctx context.Context, engine *cmd.Engine) error {
		accounts, err := engine.TopBalances(ctx, values[0], int(limit))
		if err != nil {
			return err
		}
		for i, account := range accounts {
			fmt.Printf("%2d. %d %s %s\n", i+1, account.ID, account.DisplayName, utils.FormatAmount(account.Balance))
		}
		return nil
	})
}

func handleSimulate(args []string) error {
	trials := 100000
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid round count %q: %w", args[0], err)
		}
		trials = n
	}

	cfg := config.Get()
	calculator := services.NewPayoutCalculator(cfg.PayoutMultiplier, cfg.HouseEdgeShare)
	report, err := services.AnalyzeOdds(services.NewDiceRoller(), calculator, trials, 1000)
	if err != nil {
		return err
	}

	fmt.Printf("rounds:   %d\n", report.Trials)
	fmt.Printf("HIGH:     %.4f (exact %.4f)\n", report.HighRate(), float64(services.HighCombinations)/services.CombinationCount)
	fmt.Printf("jackpot:  %.4f (exact %.4f)\n", report.JackpotRate(), float64(services.JackpotCombinations)/services.CombinationCount)
	fmt.Printf("faces:    %v (chi2 %.2f, uniform %t)\n", report.FaceCounts, report.FaceChiSquared(), report.FacesUniform())
	fmt.Printf("return:   HIGH %.4f, LOW %.4f per unit staked at x%s, house share %s\n",
		report.HighBetReturn, report.LowBetReturn, cfg.PayoutMultiplier, cfg.HouseEdgeShare)
	return nil
}

func withEngine(fn func(ctx context.Context, engine *cmd.Engine) error) error {
	ctx := context.Background()
	cfg := config.Get()
	cmd.ConfigureLogging(cfg)

	engine, err := cmd.NewEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	return fn(ctx, engine)
}

func parseInts(args []string, n int, help string) ([]int64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s", help)
	}
	values := make([]int64, n)
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		values[i] = v
	}
	return values, nil
}
