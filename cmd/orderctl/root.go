package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/infrastructure/config"
	"sandwich-bot/internal/pkg/common"

	"github.com/spf13/cobra"
)

// options 共用旗標
type options struct {
	menuFile string
	asJSON   bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "orderctl",
		Short:         "Parse sandwich orders from chat messages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.menuFile, "menu", "", "menu file (yaml or json) overriding the built-in menu")
	root.SetIn(in)
	root.SetOut(out)

	root.AddCommand(newParseCmd(opts), newMenuCmd(opts))
	return root
}

func newParseCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [message...]",
		Short: "Parse a message; reads stdin when no arguments are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts.menuFile)
			if err != nil {
				return err
			}

			message := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				message = string(data)
			}
			if strings.TrimSpace(message) == "" {
				return errors.New("message is empty")
			}

			o := engine.BuildOrder(message)
			if opts.asJSON {
				s, err := common.ToJSONIndent(common.NewParseOrderResponse(o))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), s)
				return o.Err()
			}

			printOrder(cmd.OutOrStdout(), o)
			return o.Err()
		},
	}
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the structured order as JSON")
	return cmd
}

func newMenuCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the active menu and price table",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts.menuFile)
			if err != nil {
				return err
			}
			s, err := common.ToJSONIndent(common.MenuResponse{Menu: engine.Menu()})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func loadEngine(menuFile string) (*order.Engine, error) {
	menu, err := config.LoadMenu(menuFile)
	if err != nil {
		return nil, err
	}
	return order.NewEngine(order.MenuFromConfig(menu))
}

func printOrder(w io.Writer, o *order.Order) {
	for i, line := range o.Summary() {
		fmt.Fprintf(w, "%s\t%d บาท\n", line, o.Items[i].Total)
	}
	if len(o.Items) > 0 {
		fmt.Fprintf(w, "ยอดชำระทั้งหมด\t%d บาท\n", o.Total)
	}
	if o.DeliveryTime != "" {
		fmt.Fprintf(w, "เวลาในการส่ง\t%s\n", o.DeliveryTime)
	}
	if addr := o.AddressText(); addr != "" {
		fmt.Fprintf(w, "ที่อยู่\t%s\n", addr)
	}
}
