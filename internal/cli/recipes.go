package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artemshloyda/aspectcrop/internal/recipe"
)

// newRecipesCmd создаёт команду для управления рецептами.
func newRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Управление сохранёнными рецептами",
		Long: `Управление сохранёнными рецептами.

Рецепты хранятся в ~/.config/aspectcrop/recipes/ и создаются командой
edit с флагом --save-recipe.

Примеры:
  aspectcrop recipes list
  aspectcrop recipes show portrait
  aspectcrop recipes delete portrait`,
	}

	cmd.AddCommand(newRecipesListCmd())
	cmd.AddCommand(newRecipesShowCmd())
	cmd.AddCommand(newRecipesDeleteCmd())

	return cmd
}

func newRecipesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать список сохранённых рецептов",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := recipe.DefaultStore()
			if err != nil {
				return err
			}
			recipes, err := store.List()
			if err != nil {
				return fmt.Errorf("ошибка получения списка рецептов: %w", err)
			}

			if len(recipes) == 0 {
				fmt.Println("Рецепты не найдены.")
				fmt.Println()
				fmt.Println("Сохраните рецепт командой:")
				fmt.Println("  aspectcrop edit photo.jpg --select 0,0,800,600 --save-recipe my-recipe")
				return nil
			}

			fmt.Printf("📦 Сохранённые рецепты (%d):\n\n", len(recipes))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ИМЯ\tРАЗРЕШЕНИЕ\tПОЛИТИКА\tОБЛАСТЬ\tПУТЬ")
			fmt.Fprintln(w, "---\t----------\t--------\t-------\t----")

			for _, n := range recipes {
				if n.Recipe == nil {
					fmt.Fprintf(w, "%s\t⚠️ повреждён\t-\t-\t%s\n", n.Name, n.Path)
					continue
				}
				target := n.Recipe.Target.String()
				if n.Recipe.Target.IsZero() {
					target = "-"
				}
				area := "всё изображение"
				if n.Recipe.Crop != nil {
					area = n.Recipe.Crop.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.Name, target, n.Recipe.Policy, area, n.Path)
			}
			return w.Flush()
		},
	}
}

func newRecipesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Показать содержимое рецепта",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := recipe.DefaultStore()
			if err != nil {
				return err
			}
			r, path, err := store.Load(args[0])
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(r.ToFile())
			if err != nil {
				return fmt.Errorf("не удалось сериализовать рецепт: %w", err)
			}
			fmt.Printf("📄 %s\n\n%s", path, data)
			return nil
		},
	}
}

func newRecipesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Удалить рецепт",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := recipe.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Рецепт '%s' удалён\n", args[0])
			return nil
		},
	}
}
