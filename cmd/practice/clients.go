package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/utils"
)

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List clients and firms",
	}

	cmd.AddCommand(newListClientsCmd(a), newListFirmsCmd(a))
	return cmd
}

func newListClientsCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := a.svc.Clients(cmd.Context())
			if err != nil {
				return err
			}

			if len(clients) == 0 {
				fmt.Println("No clients found.")
				return nil
			}

			for _, c := range clients {
				fmt.Printf("%s | %s | %s\n", c.ID, c.Name, c.State)
				if !verbose {
					continue
				}
				if c.GSTIN != nil {
					fmt.Printf("  GSTIN: %s\n", *c.GSTIN)
				}
				if c.PAN != nil {
					fmt.Printf("  PAN: %s\n", *c.PAN)
				}
				if c.ContactName != nil || c.Email != nil {
					fmt.Printf("  Contact: %s %s\n", utils.FromPtr(c.ContactName), utils.FromPtr(c.Email))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show tax IDs and contact details")

	return cmd
}

func newListFirmsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "firms",
		Short: "List the practice's issuing firms",
		RunE: func(cmd *cobra.Command, args []string) error {
			firms, err := a.svc.Firms(cmd.Context())
			if err != nil {
				return err
			}

			if len(firms) == 0 {
				fmt.Println("No firms found.")
				return nil
			}

			for _, f := range firms {
				gstn := f.GSTN
				if !f.Registered() {
					gstn = "unregistered"
				}
				fmt.Printf("%s | %s | %s | %s\n", f.ID, f.Name, f.State, gstn)
			}
			return nil
		},
	}
}
