package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"daytrader-client/internal/cache"
	"daytrader-client/internal/logger"
	"daytrader-client/internal/trade"
	"daytrader-client/internal/types"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show the live quote for a symbol" }
func (*quoteCmd) Usage() string {
	return `quote SYMBOL

  Prints the current market quote for SYMBOL.
`
}
func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: quote takes exactly one SYMBOL.")
		return subcommands.ExitUsageError
	}
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	r := trade.NewQuoteResolver(a.api, nil, a.cfg.Debounce())
	defer r.Close()
	r.SetSymbol(f.Arg(0))
	st, err := r.Wait(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	switch st.Status {
	case trade.LookupResolved:
		render(os.Stdout, quoteMarkdown(st.Value))
		return subcommands.ExitSuccess
	case trade.LookupNotFound:
		fmt.Fprintf(os.Stderr, "Stock symbol %s not found.\n", st.Key)
	default:
		fmt.Fprintf(os.Stderr, "Could not load quote: %v\n", st.Err)
	}
	return subcommands.ExitFailure
}

type buyCmd struct {
	yes bool
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares of a symbol" }
func (*buyCmd) Usage() string {
	return `buy [-y] SYMBOL QUANTITY

  Shows the estimated total cost and asks for confirmation before placing
  the order. -y confirms without asking.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm without prompting")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: buy takes SYMBOL and QUANTITY.")
		return subcommands.ExitUsageError
	}
	qty, err := strconv.Atoi(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid quantity %q.\n", f.Arg(1))
		return subcommands.ExitUsageError
	}
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	nav := &termNavigator{}
	ctrl := a.newController(nav)
	defer ctrl.Close()
	ctrl.SetAction(types.OrderTypeBuy)
	ctrl.SetSymbol(f.Arg(0))
	ctrl.SetQuantity(qty)
	return runTrade(ctx, a, ctrl, nav, c.yes, os.Stdin, os.Stdout)
}

type sellCmd struct {
	yes bool
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell an entire holding" }
func (*sellCmd) Usage() string {
	return `sell [-y] HOLDING_ID

  Shows the estimated proceeds and asks for confirmation before selling the
  whole holding. -y confirms without asking.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm without prompting")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: sell takes exactly one HOLDING_ID.")
		return subcommands.ExitUsageError
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid holding id %q.\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	nav := &termNavigator{}
	ctrl := a.newController(nav)
	defer ctrl.Close()
	ctrl.SetAction(types.OrderTypeSell)
	ctrl.SetHolding(id)
	return runTrade(ctx, a, ctrl, nav, c.yes, os.Stdin, os.Stdout)
}

// runTrade drives a filled-in form through validation, confirmation and
// submission, then renders wherever the controller navigated to.
func runTrade(ctx context.Context, a *app, ctrl *trade.Controller, nav *termNavigator, yes bool, in io.Reader, out io.Writer) subcommands.ExitStatus {
	if err := ctrl.WaitLookups(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ctrl.Submit(); err != nil {
		snap := ctrl.Snapshot()
		fmt.Fprintf(os.Stderr, "%s\n", snap.Message())
		if snap.Quote.Retryable() || snap.Holding.Retryable() {
			fmt.Fprintln(os.Stderr, "The lookup failed; run the command again to retry.")
		}
		return subcommands.ExitFailure
	}

	render(out, estimateMarkdown(ctrl.Snapshot()))
	if !yes && !confirm(in, out, "Place this order?") {
		ctrl.Cancel()
		fmt.Fprintln(out, "Order cancelled.")
		return subcommands.ExitSuccess
	}

	order, err := ctrl.Confirm(ctx)
	if err != nil {
		var se *trade.SubmissionError
		if errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, se.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}
	render(out, receiptMarkdown(trade.NewReceipt(order)))

	if nav.route != "" {
		if err := showRoute(ctx, a, nav.route, out); err != nil {
			logger.Warn(ctx, "Failed to render view", "route", nav.route, "error", err)
		}
	}
	return subcommands.ExitSuccess
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// termNavigator records the route; the command renders it once the
// controller is done, so the view is read after invalidation.
type termNavigator struct {
	route string
}

func (n *termNavigator) Navigate(route string) { n.route = route }

func showRoute(ctx context.Context, a *app, route string, out io.Writer) error {
	u, err := url.Parse(route)
	if err != nil {
		return err
	}
	switch u.Path {
	case trade.RouteOrders:
		orders, err := cache.Orders(ctx, a.cache)
		if err != nil {
			return err
		}
		sold, _ := strconv.ParseInt(u.Query().Get("sold"), 10, 64)
		render(out, ordersMarkdown(orders, sold))
	case trade.RoutePortfolio:
		hs, err := cache.Holdings(ctx, a.cache)
		if err != nil {
			return err
		}
		render(out, holdingsMarkdown(hs))
	default:
		return fmt.Errorf("unknown route %q", route)
	}
	return nil
}

type holdingsCmd struct{}

func (*holdingsCmd) Name() string           { return "holdings" }
func (*holdingsCmd) Synopsis() string       { return "list owned positions" }
func (*holdingsCmd) Usage() string          { return "holdings\n" }
func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (*holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return showView(ctx, trade.RoutePortfolio)
}

type ordersCmd struct{}

func (*ordersCmd) Name() string           { return "orders" }
func (*ordersCmd) Synopsis() string       { return "list order history" }
func (*ordersCmd) Usage() string          { return "orders\n" }
func (*ordersCmd) SetFlags(*flag.FlagSet) {}

func (*ordersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return showView(ctx, trade.RouteOrders)
}

type accountCmd struct{}

func (*accountCmd) Name() string           { return "account" }
func (*accountCmd) Synopsis() string       { return "show the account summary" }
func (*accountCmd) Usage() string          { return "account\n" }
func (*accountCmd) SetFlags(*flag.FlagSet) {}

func (*accountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := cache.Account(ctx, a.cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading account: %v\n", err)
		return subcommands.ExitFailure
	}
	render(os.Stdout, accountMarkdown(s))
	return subcommands.ExitSuccess
}

func showView(ctx context.Context, route string) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := showRoute(ctx, a, route, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
