package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crmimport/internal/core"
	"github.com/JonMunkholm/crmimport/internal/store"
)

// noStore marks commands that run without configuration or a record store.
const noStore = "no-store"

func newSchemasCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "schemas",
		Short:       "List importable schemas and their fields",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSchemas(cmd.OutOrStdout(), core.All())
		},
	}
}

func printSchemas(out io.Writer, schemas []*core.Schema) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, s := range schemas {
		fmt.Fprintf(tw, "%s\t%s\n", s.Info.ID, s.Info.Label)
		for _, f := range s.Fields {
			flags := f.Kind.String()
			if f.Critical {
				flags = "required"
				if f.Fallback != "" {
					flags += ", default " + f.Fallback
				}
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.ID, f.Label, flags)
		}
	}
	return tw.Flush()
}

func newTemplateCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:         "template <schema>",
		Short:       "Write the exemplar workbook of a schema",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{noStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := core.SchemaID(args[0])
			data, err := core.GenerateTemplate(id)
			if err != nil {
				return withCode(exitUsage, err)
			}
			if output == "" {
				output = core.TemplateFileName(id)
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			opts.logger.Info("template written", "schema", id, "path", output, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default: <schema>_import_template.xlsx)")
	return cmd
}

type importOptions struct {
	owner    string
	defaults map[string]string
	mapping  map[string]string
	dryRun   bool
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var imp importOptions

	cmd := &cobra.Command{
		Use:   "import <schema> <file>",
		Short: "Import a CSV or Excel file into a schema",
		Long: `Import reads a CSV, TSV or .xlsx file, matches its header to the schema
fields and commits every row in one transaction.

Columns are matched automatically. Use --map to retarget a column by its
zero-based index (an empty target or _skip skips it) and --default to supply values
for required fields the file does not carry.`,
		Example: `  importctl import leads leads.csv --owner 7c9e6679-7425-40de-944b-e07fc1f90ae7 \
    --default lead_source=Website --default status=New --map 4=`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, core.SchemaID(args[0]), args[1], imp)
		},
	}

	cmd.Flags().StringVar(&imp.owner, "owner", "", "Owner UUID the records are imported for (required)")
	cmd.Flags().StringToStringVar(&imp.defaults, "default", nil, "Batch default as field=value, repeatable")
	cmd.Flags().StringToStringVar(&imp.mapping, "map", nil, "Column override as index=field, repeatable")
	cmd.Flags().BoolVar(&imp.dryRun, "dry-run", false, "Show the mapping and validation result without committing")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts *globalOptions, id core.SchemaID, path string, imp importOptions) error {
	owner, err := parseOwner(imp.owner)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(imp.mapping)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return withCode(exitUsage, err)
	}
	if info.Size() > opts.cfg.Import.MaxFileSize {
		return fmt.Errorf("file too large: %d bytes exceeds the limit of %d", info.Size(), opts.cfg.Import.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	records, err := store.Open(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer records.Close()

	svc := core.NewService(records, records, opts.cfg)
	name := filepath.Base(path)

	if imp.dryRun {
		sess, err := svc.Prepare(ctx, owner, id, name, data)
		if err != nil {
			return explain(err)
		}
		if err := svc.Configure(sess, overrides, core.Defaults(imp.defaults)); err != nil {
			return explain(err)
		}
		if err := printSession(out, sess); err != nil {
			return err
		}
		if err := sess.Validate(); err != nil {
			return explain(err)
		}
		fmt.Fprintf(out, "ready: %d rows would be imported\n", len(sess.Rows))
		return nil
	}

	result, err := svc.Import(ctx, core.ImportRequest{
		Owner:     owner,
		Schema:    id,
		FileName:  name,
		Data:      data,
		Overrides: overrides,
		Defaults:  core.Defaults(imp.defaults),
	}, core.LogNotifier{Logger: opts.logger})
	if err != nil {
		return explain(err)
	}

	fmt.Fprintf(out, "%s: %d of %d rows imported (run %s, %s)\n",
		result.FileName, result.Inserted, result.TotalRows, result.RunID, result.Duration)
	return nil
}

// printSession lists each source column with its target and the batch defaults.
func printSession(out io.Writer, sess *core.Session) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "COLUMN\tHEADER\tFIELD\n")
	for i, m := range sess.Mapping {
		target := m.Target
		if !m.Active() {
			target = "(skipped)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, m.Source, target)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	keys := make([]string, 0, len(sess.Defaults))
	for k := range sess.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "default %s=%q\n", k, sess.Defaults[k])
	}
	return nil
}

// explain wraps a pipeline error with its user message and support code.
func explain(err error) error {
	msg := core.MapError(err)
	code := exitFailure
	switch msg.Code {
	case "VAL001", "VAL003", "VAL005", "VAL006", "VAL007", "SCH001":
		code = exitUsage
	}
	return withCode(code, fmt.Errorf("%s: %w", core.FormatUserError(err), err))
}

func parseOwner(raw string) (uuid.UUID, error) {
	owner, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, withCode(exitUsage, fmt.Errorf("invalid --owner: %w", err))
	}
	if owner == uuid.Nil {
		return uuid.Nil, withCode(exitUsage, fmt.Errorf("invalid --owner: must not be the nil UUID"))
	}
	return owner, nil
}

// parseOverrides converts index=field flags to column overrides.
// An empty field skips the column.
func parseOverrides(raw map[string]string) (map[int]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(raw))
	for k, target := range raw {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, withCode(exitUsage, fmt.Errorf("invalid --map %q: column must be an index", k))
		}
		target = strings.TrimSpace(target)
		if target == "" {
			target = core.SkipTarget
		}
		out[i] = target
	}
	return out, nil
}

type profileOptions struct {
	owner string
	store.Profile
}

func newProfileCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or replace the option lists of an owner",
	}

	var show profileOptions
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged option lists of an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(show.owner)
			if err != nil {
				return err
			}
			records, err := store.Open(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer records.Close()

			options, err := records.DefaultOptions(cmd.Context(), owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range core.OptionKeys {
				fmt.Fprintf(out, "%s: %s\n", key, strings.Join(options.Get(key), ", "))
			}
			return nil
		},
	}
	showCmd.Flags().StringVar(&show.owner, "owner", "", "Owner UUID (required)")
	_ = showCmd.MarkFlagRequired("owner")

	var set profileOptions
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the option lists of an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(set.owner)
			if err != nil {
				return err
			}
			records, err := store.Open(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer records.Close()

			if err := records.SaveProfile(cmd.Context(), owner, set.Profile); err != nil {
				return err
			}
			opts.logger.Info("profile saved", "owner", owner)
			return nil
		},
	}
	f := setCmd.Flags()
	f.StringVar(&set.owner, "owner", "", "Owner UUID (required)")
	f.StringSliceVar(&set.LeadStages, "lead-stages", nil, "Base lead stages")
	f.StringSliceVar(&set.CustomLeadStages, "custom-lead-stages", nil, "Custom lead stages")
	f.StringSliceVar(&set.LeadSources, "lead-sources", nil, "Base lead sources")
	f.StringSliceVar(&set.CustomLeadSources, "custom-lead-sources", nil, "Custom lead sources")
	f.StringSliceVar(&set.ServiceTypes, "service-types", nil, "Base service types")
	f.StringSliceVar(&set.CustomServiceTypes, "custom-service-types", nil, "Custom service types")
	f.StringSliceVar(&set.ServiceFrequencies, "service-frequencies", nil, "Base service frequencies")
	f.StringSliceVar(&set.CustomServiceFrequencies, "custom-service-frequencies", nil, "Custom service frequencies")
	_ = setCmd.MarkFlagRequired("owner")

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}
