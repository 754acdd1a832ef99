package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/dianafit/internal/app"
	"github.com/claude/dianafit/internal/quantity"
	"github.com/claude/dianafit/internal/shopping"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/spf13/cobra"
)

func newShoppingCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopping",
		Short: "Manage the shopping list",
	}
	cmd.AddCommand(newShoppingListCommand(ctx))
	cmd.AddCommand(newShoppingAddCommand(ctx))
	cmd.AddCommand(newShoppingRemoveCommand(ctx))
	cmd.AddCommand(newShoppingCheckCommand(ctx))
	cmd.AddCommand(newShoppingClearCommand(ctx))
	return cmd
}

func newShoppingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the merged shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				printShoppingList(cmd, a.Tracker.ShoppingList())
				return nil
			})
		},
	}
}

func printShoppingList(cmd *cobra.Command, list tracker.ShoppingList) {
	out := cmd.OutOrStdout()
	if len(list.Recipes) == 0 {
		fmt.Fprintln(out, "The shopping list is empty.")
		return
	}

	recipeRows := make([][]string, 0, len(list.Recipes))
	for _, r := range list.Recipes {
		recipeRows = append(recipeRows, []string{r.EntryID, r.RecipeID, r.Name, strconv.Itoa(r.Portions)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Entry", "Recipe", "Name", "Portions"}, recipeRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))

	itemRows := make([][]string, 0, len(list.Items))
	for _, it := range shopping.Sorted(list.Items) {
		mark := "[ ]"
		if it.Checked {
			mark = "[x]"
		}
		sources := make([]string, 0, len(it.Sources))
		for _, s := range it.Sources {
			sources = append(sources, s.RecipeName)
		}
		itemRows = append(itemRows, []string{
			mark, it.DisplayName, quantity.FormatQuantity(quantity.Quantity{Amount: it.Amount, Unit: it.Unit}), strings.Join(sources, ", "), it.ID,
		})
	}
	fmt.Fprintln(out, renderTable(out, []string{"", "Item", "Amount", "From", "ID"}, itemRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
	fmt.Fprintf(out, "%d of %d items left\n", list.UncheckedCount, len(list.Items))
}

func newShoppingAddCommand(ctx *commandContext) *cobra.Command {
	var (
		portions    int
		onDuplicate string
	)
	cmd := &cobra.Command{
		Use:   "add <recipe-id>",
		Short: "Add a recipe's ingredients to the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res shopping.Resolution
			if onDuplicate != "" {
				var err error
				if res, err = shopping.ParseResolution(onDuplicate); err != nil {
					return err
				}
			}
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				_, err := a.Tracker.AddRecipe(cmd.Context(), args[0], portions)
				if errors.Is(err, shopping.ErrDuplicateRecipe) {
					if onDuplicate == "" {
						return fmt.Errorf("%s is already on the list; pass --on-duplicate replace, add or cancel", args[0])
					}
					err = a.Tracker.ResolveDuplicate(cmd.Context(), args[0], portions, res)
				}
				if err != nil {
					return err
				}
				printShoppingList(cmd, a.Tracker.ShoppingList())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&portions, "portions", "p", 1, "Number of portions (1-10)")
	cmd.Flags().StringVar(&onDuplicate, "on-duplicate", "", "When the recipe is already listed: replace, add or cancel")
	return cmd
}

func newShoppingRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove a recipe entry and its ingredients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				if err := a.Tracker.RemoveShoppingRecipe(cmd.Context(), args[0]); err != nil {
					return err
				}
				printShoppingList(cmd, a.Tracker.ShoppingList())
				return nil
			})
		},
	}
}

func newShoppingCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <item-id>",
		Short: "Toggle the checked state of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				item, err := a.Tracker.ToggleShoppingItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				state := "unchecked"
				if item.Checked {
					state = "checked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", item.DisplayName, state)
				return nil
			})
		},
	}
}

func newShoppingClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				a.Tracker.ClearShopping(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Shopping list cleared.")
				return nil
			})
		},
	}
}
