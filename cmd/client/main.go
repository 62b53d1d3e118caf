// Package main is a small CLI over the dashboard API, mainly useful for
// poking at a running server and for demonstrating the offline cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/corpdesk/corpdesk/internal/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "dashboard server address")
	cachePath := flag.String("cache", "corpdesk-cache.json", "offline cache file")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: client [flags] registrations|packages|bank-details|show <id>")
		os.Exit(2)
	}

	ctx := context.Background()
	c := client.New(*server, *cachePath)
	if *email != "" {
		if _, err := c.Login(ctx, *email, *password); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch flag.Arg(0) {
	case "registrations":
		res, err := c.Registrations(ctx)
		exitOn(err)
		printOfflineNote(res.Offline)
		for _, reg := range res.Data {
			fmt.Printf("%s  %-24s  step=%s status=%s\n", reg.ID, reg.CompanyName, reg.CurrentStep, reg.Status)
		}
	case "packages":
		res, err := c.Packages(ctx)
		exitOn(err)
		printOfflineNote(res.Offline)
		for _, p := range res.Data {
			fmt.Printf("%s  %-24s  price=%.2f advance=%.2f\n", p.ID, p.Name, p.Price, p.AdvanceAmount)
		}
	case "bank-details":
		res, err := c.BankDetails(ctx)
		exitOn(err)
		printOfflineNote(res.Offline)
		for _, d := range res.Data {
			fmt.Printf("%s  %s  %s (%s)\n", d.ID, d.BankName, d.AccountNumber, d.Branch)
		}
	case "show":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: client show <id>")
			os.Exit(2)
		}
		reg, err := c.Registration(ctx, flag.Arg(1))
		exitOn(err)
		fmt.Printf("ID: %s\nCompany: %s\nStep: %s\nStatus: %s\n",
			reg.ID, reg.CompanyName, reg.CurrentStep, reg.Status)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}
}

func printOfflineNote(offline bool) {
	if offline {
		fmt.Println("(offline: showing cached data, may be stale)")
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
