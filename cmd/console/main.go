// Command console is a terminal client for the administration API: list the
// user roster, assign roles and delete accounts.
//
// Usage:
//
//	console -server http://localhost:4000 -email admin@x.com -password pw list
//	console ... assign bob@x.com manager
//	console ... delete 6f1c...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lettable/booking-admin/pkg/console"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: console [flags] <list|assign EMAIL ROLE|delete UID>")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	server := flag.String("server", "http://localhost:4000", "API server base URL")
	email := flag.String("email", os.Getenv("CONSOLE_EMAIL"), "sign-in email")
	password := flag.String("password", os.Getenv("CONSOLE_PASSWORD"), "sign-in password")
	flag.Parse()

	if *email == "" || *password == "" || flag.NArg() < 1 {
		usage()
	}

	ctx := context.Background()
	client := console.New(*server)

	session, err := client.SignIn(ctx, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.UserMessage(err))
		os.Exit(1)
	}
	defer client.SignOut(ctx)

	if !session.IsAdmin() {
		fmt.Fprintln(os.Stderr, "signed-in user is not an admin")
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "list":
		roster, err := client.LoadRoster(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.UserMessage(err))
			os.Exit(1)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "UID\tEMAIL\tNAME\tROLE")
		for _, row := range roster {
			marker := ""
			if row.UID == session.UID {
				marker = " (you)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\n", row.UID, row.Email, row.DisplayName, row.Role, marker)
		}
		w.Flush()

	case "assign":
		if flag.NArg() != 3 {
			usage()
		}
		message, err := client.AssignRole(ctx, flag.Arg(1), flag.Arg(2))
		if err != nil {
			fmt.Fprintln(os.Stderr, console.UserMessage(err))
			os.Exit(1)
		}
		fmt.Println(message)

	case "delete":
		if flag.NArg() != 2 {
			usage()
		}
		message, err := client.DeleteUser(ctx, flag.Arg(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, console.UserMessage(err))
			os.Exit(1)
		}
		fmt.Println(message)

	default:
		usage()
	}
}
