package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rt-tools/rt-go/types"
)

var (
	searchQueueFlag string
	searchOrderFlag string
	searchRawFlag   string
)

var searchCmd = &cobra.Command{
	Use:   "search [Field=Value ...]",
	Short: "Search tickets",
	Long: `Search tickets with TicketSQL conditions built from Field=Value
arguments, e.g.:

  rt search Status=open Subject=outage --queue Support --order -Created`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchQueueFlag, "queue", "", "Restrict the search to one queue")
	searchCmd.Flags().StringVar(&searchOrderFlag, "order", "", "Sort field, prefix with - for descending")
	searchCmd.Flags().StringVar(&searchRawFlag, "query", "", "Raw TicketSQL query (overrides field conditions)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	opts := types.SearchOptions{
		Queue:    searchQueueFlag,
		Order:    searchOrderFlag,
		RawQuery: searchRawFlag,
	}
	for _, arg := range args {
		fields, err := parseFieldArgs([]string{arg})
		if err != nil {
			return err
		}
		for name, value := range fields {
			opts.Conditions = append(opts.Conditions, types.Eq(name, fmt.Sprint(value)))
		}
	}
	tickets, err := client.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return printResult(tickets)
}

var showCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Show a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		ticket, err := client.GetTicket(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printResult(ticket)
	},
}

var createQueueFlag string

var createCmd = &cobra.Command{
	Use:   "create [Field=Value ...]",
	Short: "Create a ticket",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		fields, err := parseFieldArgs(args)
		if err != nil {
			return err
		}
		id, err := client.CreateTicket(cmd.Context(), createQueueFlag, fields)
		if err != nil {
			return err
		}
		fmt.Printf("Ticket %d created\n", id)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createQueueFlag, "queue", "General", "Queue to create the ticket in")
}

var editCmd = &cobra.Command{
	Use:   "edit <ticket-id> [Field=Value ...]",
	Short: "Edit ticket fields",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}
		msgs, err := client.EditTicket(cmd.Context(), id, fields)
		if err != nil {
			return err
		}
		return printResult(msgs)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <ticket-id> <text>",
	Short: "Add an internal comment to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCorrespond(cmd, args, false)
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply <ticket-id> <text>",
	Short: "Send correspondence to a ticket's requestors",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCorrespond(cmd, args, true)
	},
}

func runCorrespond(cmd *cobra.Command, args []string, reply bool) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	id, err := parseTicketID(args[0])
	if err != nil {
		return err
	}
	var msgs []string
	if reply {
		msgs, err = client.Reply(cmd.Context(), id, args[1], "")
	} else {
		msgs, err = client.Comment(cmd.Context(), id, args[1], "")
	}
	if err != nil {
		return err
	}
	return printResult(msgs)
}

var historyCmd = &cobra.Command{
	Use:   "history <ticket-id>",
	Short: "Show a ticket's transaction history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		history, err := client.GetTicketHistory(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printResult(history)
	},
}

var queueAllFlag bool

var queueCmd = &cobra.Command{
	Use:   "queue [name]",
	Short: "Show a queue, or list all queues with --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if queueAllFlag {
			queues, err := client.GetAllQueues(cmd.Context(), false)
			if err != nil {
				return err
			}
			return printResult(queues)
		}
		if len(args) != 1 {
			return fmt.Errorf("pass a queue name or --all")
		}
		queue, err := client.GetQueue(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(queue)
	},
}

func init() {
	queueCmd.Flags().BoolVar(&queueAllFlag, "all", false, "List all queues")
}

var userCmd = &cobra.Command{
	Use:   "user <name>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		user, err := client.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(user)
	},
}

var takeCmd = &cobra.Command{
	Use:   "take <ticket-id>",
	Short: "Take ownership of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  ownershipRunE("take"),
}

var untakeCmd = &cobra.Command{
	Use:   "untake <ticket-id>",
	Short: "Give up ownership of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  ownershipRunE("untake"),
}

var stealCmd = &cobra.Command{
	Use:   "steal <ticket-id>",
	Short: "Take ownership of a ticket owned by someone else",
	Args:  cobra.ExactArgs(1),
	RunE:  ownershipRunE("steal"),
}

func ownershipRunE(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		switch action {
		case "take":
			err = client.Take(cmd.Context(), id)
		case "untake":
			err = client.Untake(cmd.Context(), id)
		case "steal":
			err = client.Steal(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Owner of ticket %d changed\n", id)
		return nil
	}
}

var mergeCmd = &cobra.Command{
	Use:   "merge <ticket-id> <into-id>",
	Short: "Merge a ticket into another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		into, err := parseTicketID(args[1])
		if err != nil {
			return err
		}
		if err := client.MergeTicket(cmd.Context(), id, into); err != nil {
			return err
		}
		fmt.Printf("Ticket %d merged into %d\n", id, into)
		return nil
	},
}

var linkDeleteFlag bool

var linkCmd = &cobra.Command{
	Use:   "link <ticket-id> <link-name> <target>",
	Short: "Create or delete a ticket link",
	Long: `Create or delete a link between tickets. Valid link names are
Parent, Child, RefersTo, ReferredToBy, DependsOn and DependedOnBy.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}
		if err := client.EditLink(cmd.Context(), id, args[1], args[2], linkDeleteFlag); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	linkCmd.Flags().BoolVar(&linkDeleteFlag, "delete", false, "Delete the link instead of creating it")
}
