package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/legion-battalions/cmd/skirmish"
	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List entity templates",
	Long: `List the entity templates of a templates file, or the built-in
templates of the skirmish, with the battalion components they declare`,
	RunE: listTemplates,
}

func init() {
	templatesCmd.Flags().StringP("file", "f", "", "templates file (default is --templates or the built-in set)")
}

func loadTemplates(cmd *cobra.Command) (*templates.Set, string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = viper.GetString("templates")
	}
	if path == "" {
		set, err := skirmish.BuiltinTemplates()
		return set, "built-in", err
	}
	set, err := templates.LoadFile(path)
	return set, path, err
}

func listTemplates(cmd *cobra.Command, _ []string) error {
	set, source, err := loadTemplates(cmd)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	logger.Infof("%s %d templates from %s", logger.IconFolder, set.Len(), source)

	table := logger.NewTable("NAME", "COMPONENTS", "DETAIL")
	for _, name := range set.Names() {
		tpl, err := set.Get(name)
		if err != nil {
			return err
		}
		table.AddRow(name, strings.Join(components(tpl), ","), detail(tpl))
	}
	table.Fprint(cmd.OutOrStdout())
	return nil
}

func components(tpl *templates.Template) []string {
	var comps []string
	if tpl.Battalion != nil {
		comps = append(comps, "battalion")
	}
	if tpl.BattalionMember != nil {
		comps = append(comps, "member")
	}
	if tpl.Formation != nil {
		comps = append(comps, "formation")
	}
	if tpl.FormationAttack != nil {
		comps = append(comps, "formation_attack")
	}
	if len(tpl.Attack) > 0 {
		comps = append(comps, "attack")
	}
	if len(comps) == 0 {
		return []string{"-"}
	}
	return comps
}

func detail(tpl *templates.Template) string {
	switch {
	case tpl.Battalion != nil:
		b := tpl.Battalion
		return fmt.Sprintf("%d x %s in %s", b.NumberOfUnits, b.TemplateName, b.SpawnFormationTemplate)
	case tpl.Formation != nil:
		d := fmt.Sprintf("width %d spacing %g", tpl.Formation.Width, tpl.Formation.Spacing)
		if tpl.FormationAttack != nil && tpl.FormationAttack.CanAttackAsFormation {
			d += " attacks as one"
		}
		return d
	case len(tpl.Attack) > 0:
		parts := make([]string, 0, len(tpl.Attack))
		for _, at := range tpl.AttackTypes() {
			r := tpl.Attack[at].Range()
			maxRange := "inf"
			if r.Bounded() {
				maxRange = fmt.Sprintf("%g", r.Max)
			}
			parts = append(parts, fmt.Sprintf("%s %g-%s", at, r.Min, maxRange))
		}
		return strings.Join(parts, " ")
	}
	return ""
}
