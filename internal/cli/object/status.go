package object

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acrylJonny/metasync/internal/cli/common"
	"github.com/acrylJonny/metasync/metaobject"
	"github.com/acrylJonny/metasync/reconciler"
)

type statusReport struct {
	EntityType metaobject.EntityType `json:"entity_type" yaml:"entity-type"`
	Buckets    reconciler.Buckets    `json:"buckets" yaml:"buckets"`
}

func NewStatusCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var entityTypes []string

	command := &cobra.Command{
		Use:   "status",
		Short: "Show sync state of local rows against the remote catalog",
		Example: strings.Join([]string{
			"  metasync status",
			"  metasync status --type tag --type glossaryTerm",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			orchestratorService, err := common.RequireOrchestrator(deps)
			if err != nil {
				return err
			}

			selected, err := resolveEntityTypes(entityTypes)
			if err != nil {
				return err
			}

			reports := make([]statusReport, 0, len(selected))
			for _, entityType := range selected {
				buckets, err := orchestratorService.Reconcile(command.Context(), entityType)
				if err != nil {
					return err
				}
				reports = append(reports, statusReport{EntityType: entityType, Buckets: buckets})
			}

			return common.WriteOutput(command, globalFlags.Output, reports, renderStatusText)
		},
	}

	command.Flags().StringArrayVarP(&entityTypes, "type", "t", nil,
		"entity type to reconcile: tag|glossaryNode|glossaryTerm|test|policy (repeatable, default all)")

	return command
}

func resolveEntityTypes(raw []string) ([]metaobject.EntityType, error) {
	if len(raw) == 0 {
		return metaobject.EntityTypes(), nil
	}

	selected := make([]metaobject.EntityType, 0, len(raw))
	seen := make(map[metaobject.EntityType]bool, len(raw))
	for _, value := range raw {
		entityType := metaobject.EntityType(strings.TrimSpace(value))
		if !entityType.Valid() {
			return nil, common.ValidationError(
				"invalid entity type: use tag, glossaryNode, glossaryTerm, test, or policy", nil)
		}
		if seen[entityType] {
			continue
		}
		seen[entityType] = true
		selected = append(selected, entityType)
	}
	return selected, nil
}

func renderStatusText(w io.Writer, reports []statusReport) error {
	for idx, report := range reports {
		if idx > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := renderBucketsText(w, report.EntityType, report.Buckets); err != nil {
			return err
		}
	}
	return nil
}
