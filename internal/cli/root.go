package cli

import (
	"fmt"
	"gomata/internal/core"
	"gomata/pkg/domain"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gomata",
		Short:         "Gomata Adhaar cattle identification registry",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd.Flags())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "config file (yaml, json or toml); must exist when given")
	flags.String("db", "", "JSON database file (default cattle_database.json)")
	flags.String("storage", "", "storage driver: json|memory|sqlite|postgres")
	flags.String("log-level", "", "log level: debug|info|warn|error")
	flags.String("log-format", "", "log format: text|json")
	flags.String("blob-driver", "", "backup archive driver: fs|s3|memory")
	flags.String("backup-dir", "", "backup directory for the fs archive driver")
	flags.BoolVar(&app.trace, "trace", false, "write JSON trace spans for registry operations to stderr")

	root.AddCommand(
		newRegisterCommand(app),
		newVerifyCommand(app),
		newUpdateCommand(app),
		newSearchCommand(app),
		newDeactivateCommand(app),
		newStatsCommand(app),
		newBackupCommand(app),
		newRestoreCommand(app),
		newMenuCommand(app),
	)
	return root
}

// parseFields turns key=value arguments into record fields. Integer, float
// and boolean literals keep their type; quoted values stay strings.
func parseFields(pairs []string) (core.Fields, error) {
	var fields core.Fields
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		fields = fields.With(key, parseValue(raw))
	}
	return fields, nil
}

func parseValue(raw string) any {
	if unquoted, err := strconv.Unquote(raw); err == nil && strings.HasPrefix(raw, `"`) {
		return unquoted
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}

func notFound(id string) error {
	return domain.ErrNotFound{ID: id}
}
