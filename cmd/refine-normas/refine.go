// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refine-normas/internal/ledger"
	"github.com/pdiddy/refine-normas/internal/refine"
	"github.com/pdiddy/refine-normas/pkg/types"
)

const (
	modeFile = "file"
	modeDir  = "dir"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Extract annotation blocks into nota and responsables",
	Long: `Refine rewrites norma documents in place. Use "refine file" for a single
document and "refine dir" for every *.json file in a directory.`,
}

// --- file subcommand ---

var refineFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Refine a single norma document",
	Long: `File refines one document. Extracted values replace existing ones, the
default vocabulary applies, and fecha_actualizacion is always set
(default ` + types.SingleFileDate + `). A malformed document aborts the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefineFile,
}

func runRefineFile(cmd *cobra.Command, args []string) error {
	cfg, err := refineConfig(cmd, modeFile, types.SingleFileConfig())
	if err != nil {
		return err
	}

	rec, closeLedger, err := openRecorder(cmd.Context(), cmd, modeFile, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	r, err := refine.New(cfg, logger, rec)
	if err != nil {
		return err
	}

	if _, err := r.RefineFile(cmd.Context(), args[0], cmd.OutOrStdout()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Refinement complete.")
	return nil
}

// --- dir subcommand ---

var refineDirCmd = &cobra.Command{
	Use:   "dir [directory]",
	Short: "Refine every *.json norma document in a directory",
	Long: `Dir refines each *.json file directly inside the directory (default from
refine.dir, "data/normas"). Curated nota and responsables values are kept,
the extended vocabulary applies, opc is backfilled, and fecha_actualizacion
is only set when missing (default "` + types.DirectoryDate + `").
Malformed documents are logged and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefineDir,
}

func runRefineDir(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("refine.dir")
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := refineConfig(cmd, modeDir, types.DirectoryConfig())
	if err != nil {
		return err
	}

	rec, closeLedger, err := openRecorder(cmd.Context(), cmd, modeDir, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	r, err := refine.New(cfg, logger, rec)
	if err != nil {
		return err
	}

	result, err := r.RefineDir(cmd.Context(), dir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) could not be parsed", result.Failed)
	}
	return nil
}

// --- shared helpers ---

// refineConfig layers config-file values (refine.<mode>.*) and then flags
// over the mode's defaults.
func refineConfig(cmd *cobra.Command, mode string, cfg types.RefineConfig) (types.RefineConfig, error) {
	key := func(name string) string { return "refine." + mode + "." + name }

	if viper.IsSet(key("policy")) {
		cfg.Policy = types.Policy(viper.GetString(key("policy")))
	}
	if viper.IsSet(key("vocabulary")) {
		cfg.Vocabulary = viper.GetStringSlice(key("vocabulary"))
	}
	if viper.IsSet(key("ensure_opc")) {
		cfg.EnsureOpc = viper.GetBool(key("ensure_opc"))
	}
	if viper.IsSet(key("update_date")) {
		cfg.UpdateDate = viper.GetString(key("update_date"))
	}
	if viper.IsSet(key("force_date")) {
		cfg.ForceDate = viper.GetBool(key("force_date"))
	}
	cfg.DryRun = viper.GetBool("refine.dry_run")

	flags := cmd.Flags()
	if flags.Changed("policy") {
		p, _ := flags.GetString("policy")
		cfg.Policy = types.Policy(p)
	}
	if flags.Changed("vocabulary") {
		cfg.Vocabulary, _ = flags.GetStringSlice("vocabulary")
	}
	if flags.Changed("ensure-opc") {
		cfg.EnsureOpc, _ = flags.GetBool("ensure-opc")
	}
	if flags.Changed("date") {
		cfg.UpdateDate, _ = flags.GetString("date")
	}
	if flags.Changed("force-date") {
		cfg.ForceDate, _ = flags.GetBool("force-date")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}

	if !cfg.Policy.Valid() {
		return cfg, fmt.Errorf("unsupported policy %q: use %s or %s", cfg.Policy, types.PolicyOverwrite, types.PolicyPreserve)
	}
	return cfg, nil
}

// openRecorder opens the ledger named by --ledger or ledger.path and starts
// a run. It returns a nil recorder when no ledger is configured.
func openRecorder(ctx context.Context, cmd *cobra.Command, mode string, cfg types.RefineConfig) (refine.Recorder, func(), error) {
	path := viper.GetString("ledger.path")
	if cmd.Flags().Changed("ledger") {
		path, _ = cmd.Flags().GetString("ledger")
	}
	if path == "" {
		return nil, func() {}, nil
	}

	l, err := ledger.Open(types.LedgerConfig{Path: path})
	if err != nil {
		return nil, nil, err
	}
	run, err := l.BeginRun(ctx, ledger.RunInfo{Mode: mode, Policy: cfg.Policy, DryRun: cfg.DryRun})
	if err != nil {
		l.Close()
		return nil, nil, err
	}
	return run, func() { l.Close() }, nil
}

func init() {
	for _, c := range []*cobra.Command{refineFileCmd, refineDirCmd} {
		c.Flags().String("date", "", "value for fecha_actualizacion (empty string leaves it alone)")
		c.Flags().Bool("force-date", false, "overwrite an existing fecha_actualizacion")
		c.Flags().String("policy", "", "overwrite or preserve existing nota/responsables")
		c.Flags().StringSlice("vocabulary", nil, "responsibility tags to detect, in output order")
		c.Flags().Bool("ensure-opc", false, "add an empty opc field to records without one")
		c.Flags().Bool("dry-run", false, "report changes without writing files")
		c.Flags().String("ledger", "", "SQLite ledger to record the run in (default ledger.path)")
	}

	refineCmd.AddCommand(refineFileCmd)
	refineCmd.AddCommand(refineDirCmd)

	rootCmd.AddCommand(refineCmd)
}
