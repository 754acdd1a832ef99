package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/claude/dianafit/internal/app"
	"github.com/claude/dianafit/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func newRecipesCommand(ctx *commandContext) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := models.Category(category)
			if category != "" && !cat.Valid() {
				return fmt.Errorf("unknown category %q (want breakfast, lunch or dinner)", category)
			}
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				recipes := a.Tracker.Catalog().RecipesByCategory(cat)
				// Recipe names are Swedish; å, ä and ö sort after z.
				col := collate.New(language.Swedish)
				slices.SortStableFunc(recipes, func(x, y models.Recipe) int {
					return col.CompareString(x.Name, y.Name)
				})
				rows := make([][]string, 0, len(recipes))
				for _, r := range recipes {
					rows = append(rows, []string{r.ID, r.Name, string(r.Category), strconv.Itoa(r.Kcal)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
					[]string{"ID", "Name", "Category", "Kcal"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only show breakfast, lunch or dinner")
	cmd.AddCommand(newRecipeShowCommand(ctx))
	return cmd
}

func newRecipeShowCommand(ctx *commandContext) *cobra.Command {
	var portions int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe scaled to a number of portions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, app.Options{}, func(a *app.App) error {
				r, err := a.Tracker.ScaledRecipe(args[0], portions)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%d %s)\n", r.Name, portions, portionWord(portions))
				fmt.Fprintf(out, "%d kcal, protein %.0fg, kolhydrater %.0fg, fett %.0fg\n\n", r.Kcal, r.Protein, r.Carbs, r.Fat)
				rows := make([][]string, 0, len(r.Ingredients))
				for _, ing := range r.Ingredients {
					rows = append(rows, []string{ing.Amount, ing.Item})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Amount", "Item"}, rows,
					[]columnAlignment{alignRight, alignLeft}))
				if len(r.Instructions) > 0 {
					fmt.Fprintln(out)
					for i, step := range r.Instructions {
						fmt.Fprintf(out, "%d. %s\n", i+1, step)
					}
				}
				if tips := strings.TrimSpace(r.Tips); tips != "" {
					fmt.Fprintf(out, "\nTips: %s\n", tips)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&portions, "portions", "p", 1, "Number of portions (1-10)")
	return cmd
}

func portionWord(n int) string {
	if n == 1 {
		return "portion"
	}
	return "portioner"
}
