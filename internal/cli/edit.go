package cli

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/recipe"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
	"github.com/artemshloyda/aspectcrop/internal/session"
	"github.com/artemshloyda/aspectcrop/internal/transform"
)

// editOptions - флаги команды edit.
type editOptions struct {
	rotate      int
	flip        bool
	angle       float64
	selection   string
	target      string
	policy      string
	align       string
	background  string
	transparent bool
	resize      bool
	saveRecipe  string
	recipeFile  string
}

// newEditCmd создаёт команду edit.
func newEditCmd() *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit <image>",
		Short: "Повернуть, отразить и вырезать область одного изображения",
		Long: `Редактирование одного изображения.

Преобразования применяются в порядке: отражение, поворот кратно 90 по часовой
стрелке, произвольный поворот против часовой стрелки. Область --select задаётся
в пикселях уже преобразованного изображения. Результат сохраняется рядом
с исходным файлом как <имя>_cropped.png (или _cropped_001.png и т.д.).

Примеры:
  aspectcrop edit photo.jpg --rotate 90 --select 0,100,832,1316
  aspectcrop edit photo.jpg --angle 3.5 --resize --target AUTO --policy fit
  aspectcrop edit photo.jpg --flip --select 10,10,500,500 --save-recipe square`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.rotate, "rotate", 0, "Поворот по часовой стрелке: 0, 90, 180, 270")
	flags.BoolVar(&opts.flip, "flip", false, "Отразить по горизонтали")
	flags.Float64Var(&opts.angle, "angle", 0, "Произвольный поворот в градусах (против часовой стрелки)")
	flags.StringVar(&opts.selection, "select", "", "Область x1,y1,x2,y2 в пикселях")
	flags.StringVar(&opts.target, "target", resolution.AutoToken, "Целевое разрешение: AUTO или WxH")
	flags.StringVar(&opts.policy, "policy", geometry.Crop.String(), "Политика: crop или fit")
	flags.StringVar(&opts.align, "align", geometry.Center.String(), "Выравнивание при обрезке")
	flags.StringVar(&opts.background, "background", transform.DefaultBackgroundHex, "Цвет фона #RRGGBB")
	flags.BoolVar(&opts.transparent, "transparent", false, "Прозрачный фон (RGBA на выходе)")
	flags.BoolVar(&opts.resize, "resize", false, "Привести результат к целевому разрешению")
	flags.StringVar(&opts.saveRecipe, "save-recipe", "", "Сохранить настройки как именованный рецепт")
	flags.StringVar(&opts.recipeFile, "recipe-out", "", "Сохранить настройки в YAML файл рецепта")

	return cmd
}

// output разбирает параметры приведения к разрешению.
// Разрешение проверяется до любой работы с пикселями.
func (o *editOptions) output() (transform.Output, error) {
	var out transform.Output
	var err error

	if out.Target, err = resolution.Parse(o.target); err != nil {
		return out, err
	}
	if out.Policy, err = geometry.ParsePolicy(o.policy); err != nil {
		return out, err
	}
	if out.Align, err = geometry.ParseAlign(o.align); err != nil {
		return out, err
	}
	if out.Background, err = transform.ParseBackground(o.background, o.transparent); err != nil {
		return out, err
	}
	if !o.resize {
		out.Target = resolution.Target{}
	}
	return out, nil
}

func runEdit(cmd *cobra.Command, path string, o *editOptions) error {
	out, err := o.output()
	if err != nil {
		return err
	}
	coarse, err := transform.NormalizeCoarse(o.rotate)
	if err != nil {
		return err
	}
	var sel image.Rectangle
	if o.selection != "" {
		if sel, err = parseRect(o.selection); err != nil {
			return err
		}
	}

	s, err := session.Open(path, out.Background)
	if err != nil {
		return err
	}

	if o.flip {
		s.Flip()
	}
	for i := 0; i < coarse/90; i++ {
		s.RotateCW()
	}
	if o.angle != 0 {
		s.SetFineAngle(o.angle)
	}
	if !sel.Empty() {
		if err := s.SetSourceSelection(sel); err != nil {
			return err
		}
	}

	dst, err := s.Save(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s -> %s\n", path, dst)

	if o.saveRecipe == "" && o.recipeFile == "" {
		return nil
	}

	rcp := s.Recipe(out)
	if o.recipeFile != "" {
		if err := rcp.Save(o.recipeFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "💾 Рецепт сохранён: %s\n", o.recipeFile)
	}
	if o.saveRecipe != "" {
		store, err := recipe.DefaultStore()
		if err != nil {
			return err
		}
		saved, err := store.Save(o.saveRecipe, rcp)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "💾 Рецепт '%s' сохранён: %s\n", o.saveRecipe, saved)
	}
	return nil
}

// parseRect разбирает "x1,y1,x2,y2".
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("%w: область должна быть x1,y1,x2,y2: %q", resolution.ErrInvalidDimension, s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("%w: %q", resolution.ErrInvalidDimension, p)
		}
		v[i] = n
	}

	r := image.Rect(v[0], v[1], v[2], v[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: пустая область %q", resolution.ErrInvalidDimension, s)
	}
	return r, nil
}
