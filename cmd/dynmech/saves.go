package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"dynmech/internal/save"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Inspect and clear save slots",
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List occupied save slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s save.Store) error {
			return printSlots(ctx, cmd.OutOrStdout(), s)
		})
	},
}

var savesClearCmd = &cobra.Command{
	Use:   "clear <slot>",
	Short: "Delete the battle saved in a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad slot %q", args[0])
		}
		return withStore(cmd, func(ctx context.Context, s save.Store) error {
			if err := s.Clear(ctx, slot); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "slot %d cleared.\n", slot)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(savesCmd)
	savesCmd.AddCommand(savesListCmd, savesClearCmd)
}

func withStore(cmd *cobra.Command, fn func(context.Context, save.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()
	s, closeStore, err := a.store(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, s)
}

func printSlots(ctx context.Context, w io.Writer, s save.Store) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "no saves.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "slot %d  %s  %d bytes\n", e.Slot, e.SavedAt.Format("2006-01-02 15:04:05"), e.Size)
	}
	return nil
}
