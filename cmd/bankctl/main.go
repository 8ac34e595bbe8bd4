// Package main is a command-line driver for the bank registry API.
//
// Usage:
//
//	bankctl [-url URL] list
//	bankctl [-url URL] get ID
//	bankctl [-url URL] create NAME LOCATION
//	bankctl [-url URL] update ID NAME LOCATION
//	bankctl [-url URL] delete ID
//	bankctl [-url URL] demo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sefa-b/bank-registry/pkg/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bankctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr("BANK_API_URL", client.DefaultBaseURL), "banks collection URL")
	timeout := fs.Duration("timeout", 10*time.Second, "per-command timeout")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: bankctl [-url URL] list|get ID|create NAME LOCATION|update ID NAME LOCATION|delete ID|demo")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*baseURL, nil)
	if err := dispatch(ctx, c, fs.Arg(0), fs.Args()[1:], stdout); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(stderr, "bankctl:", err)
			fs.Usage()
			return 2
		}
		fmt.Fprintln(stderr, "bankctl:", err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, c *client.Client, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "list":
		return listBanks(ctx, c, out)

	case "get":
		if len(args) != 1 {
			return usageError("get takes ID")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		bank, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		printBank(out, bank)
		return nil

	case "create":
		if len(args) != 2 {
			return usageError("create takes NAME LOCATION")
		}
		bank, err := c.Create(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprint(out, "Created bank: ")
		printBank(out, bank)
		return nil

	case "update":
		if len(args) != 3 {
			return usageError("update takes ID NAME LOCATION")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		bank, err := c.Update(ctx, id, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprint(out, "Updated bank: ")
		printBank(out, bank)
		return nil

	case "delete":
		if len(args) != 1 {
			return usageError("delete takes ID")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted bank with id %d\n", id)
		return nil

	case "demo":
		return demo(ctx, c, out)

	default:
		return usageError("unknown command " + strconv.Quote(cmd))
	}
}

// demo creates a bank, moves it, deletes it, and lists the collection after
// every step.
func demo(ctx context.Context, c *client.Client, out io.Writer) error {
	fmt.Fprintln(out, "=== API Client Demo ===")

	bank, err := c.Create(ctx, "Demo Bank", "Athens")
	if err != nil {
		return err
	}
	fmt.Fprint(out, "Created bank: ")
	printBank(out, bank)

	if err := listBanks(ctx, c, out); err != nil {
		return err
	}

	location := "Thessaloniki"
	bank, err = c.Patch(ctx, bank.ID, nil, &location)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "Updated bank: ")
	printBank(out, bank)

	if err := listBanks(ctx, c, out); err != nil {
		return err
	}

	if err := c.Delete(ctx, bank.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted bank with id %d\n", bank.ID)

	return listBanks(ctx, c, out)
}

func listBanks(ctx context.Context, c *client.Client, out io.Writer) error {
	banks, err := c.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Banks from API:")
	for i := range banks {
		fmt.Fprintf(out, "- %d: %s (%s)\n", banks[i].ID, banks[i].Name, banks[i].Location)
	}
	return nil
}

func printBank(out io.Writer, b *client.Bank) {
	fmt.Fprintf(out, "%d: %s (%s)\n", b.ID, b.Name, b.Location)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError("invalid id " + strconv.Quote(s))
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
