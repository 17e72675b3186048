package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/catalog"
	"github.com/san-kum/bondgraph/internal/config"
	"github.com/san-kum/bondgraph/internal/export"
	"github.com/san-kum/bondgraph/internal/library"
	"github.com/san-kum/bondgraph/internal/metrics"
	"github.com/san-kum/bondgraph/internal/reaction"
	"github.com/san-kum/bondgraph/internal/symbolic"
	"github.com/spf13/cobra"
)

type app struct {
	configFile string
	logLevel   string
	metrics    bool
	format     string

	cfg      *config.Config
	logger   *slog.Logger
	lib      *library.Registry
	recorder *metrics.Recorder
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:               "bondgraph",
		Short:             "bond graph modelling and equation assembly",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.recorder == nil {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), separator(40))
			return a.recorder.WriteText(cmd.OutOrStdout())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print assembly metrics after the command")

	relationsCmd := &cobra.Command{
		Use:   "relations [model]",
		Short: "print the reduced constitutive relations of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  a.relations,
	}
	relationsCmd.Flags().StringVar(&a.format, "format", "text", "output format (text, raw, json, csv)")

	basisCmd := &cobra.Command{
		Use:   "basis [model]",
		Short: "print the state, port and control basis of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  a.basis,
	}

	reactionCmd := &cobra.Command{
		Use:   "reaction [reaction]...",
		Short: "assemble a reaction network given as reactions, e.g. \"E + S = ES\"",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.reaction,
	}
	reactionCmd.Flags().Bool("normalised", true, "use R = T = 1")

	stoichCmd := &cobra.Command{
		Use:   "stoichiometry [network]",
		Short: "print the stoichiometric matrices of a reaction network",
		Args:  cobra.ExactArgs(1),
		RunE:  a.stoichiometry,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list reaction network presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tREACTIONS")
			for _, name := range a.cfg.NetworkNames() {
				rs, _ := a.cfg.Network(name)
				fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(rs, "; "))
			}
			return w.Flush()
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models known to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range a.catalog().ListModels() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	libraryCmd := &cobra.Command{
		Use:   "library [name]",
		Short: "list component libraries or the types of one library",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.library,
	}

	checkCmd := &cobra.Command{
		Use:   "check [model]...",
		Short: "assemble models concurrently and report their status (all models by default)",
		RunE:  a.check,
	}

	rootCmd.AddCommand(relationsCmd, basisCmd, reactionCmd, stoichCmd, presetsCmd, modelsCmd, libraryCmd, checkCmd)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.cfg = config.DefaultConfig()
	if a.configFile != "" {
		cfg, err := config.Load(a.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.logLevel == "" {
		a.logLevel = a.cfg.LogLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.lib = library.NewRegistry()
	a.lib.SetLogger(a.logger)
	if a.metrics {
		a.recorder = metrics.NewRecorder()
	}
	return nil
}

func (a *app) catalog() *catalog.Registry {
	opts := []catalog.Option{catalog.WithLibrary(a.lib), catalog.WithLogger(a.logger)}
	if a.recorder != nil {
		opts = append(opts, catalog.WithObserver(a.recorder))
	}
	return catalog.NewRegistry(a.cfg, opts...)
}

func (a *app) observe(m *bondgraph.Model) {
	if a.recorder != nil {
		m.Observe(a.recorder)
	}
}

func (a *app) relations(cmd *cobra.Command, args []string) error {
	m, err := a.catalog().GetModel(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch a.format {
	case "text":
		return printRelations(out, m)
	case "raw":
		rels, err := m.ConstitutiveRelations()
		if err != nil {
			return err
		}
		for _, r := range rels {
			fmt.Fprintln(out, r)
		}
		return nil
	case "json", "csv":
		data, err := export.FromModel(m)
		if err != nil {
			return err
		}
		if a.format == "json" {
			return export.WriteJSON(out, data)
		}
		return export.WriteCSV(out, data)
	}
	return fmt.Errorf("unknown format: %s", a.format)
}

func printRelations(out io.Writer, m *bondgraph.Model) error {
	sys, err := m.SystemRep()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, headerStyle.Render(m.String()))
	for i, r := range sys.Relations() {
		line := r.String() + " = 0"
		if !symbolic.IsZero(sys.Nonlinear[i]) {
			line = nonlinearStyle.Render(line)
		}
		fmt.Fprintf(out, "%3d  %s\n", i+1, line)
	}
	if params := m.Params(); len(params) > 0 {
		fmt.Fprintln(out, titleStyle.Render("parameters"))
		for _, p := range params {
			fmt.Fprintf(out, "  %s\n", field(p.Component.Name()+"."+p.Name, p.Value.String()))
		}
	}
	return nil
}

func matrixRow(row func(int) []symbolic.Expr) func(int) []string {
	return func(i int) []string {
		var out []string
		for _, e := range row(i) {
			out = append(out, e.String())
		}
		return out
	}
}

func (a *app) basis(cmd *cobra.Command, args []string) error {
	m, err := a.catalog().GetModel(args[0])
	if err != nil {
		return err
	}
	b := m.BasisVectors()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VAR\tOWNER\tLOCAL")
	for _, s := range b.States {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.X, s.OwnerName, s.Local)
	}
	for _, p := range b.Ports {
		fmt.Fprintf(w, "%s, %s\t%s\tport %d\n", p.E, p.F, p.OwnerName, p.Port)
	}
	for _, u := range b.Controls {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.U, u.OwnerName, u.Local)
	}
	return w.Flush()
}

func (a *app) reaction(cmd *cobra.Command, args []string) error {
	normalised := a.cfg.Normalised
	if cmd.Flags().Changed("normalised") {
		normalised, _ = cmd.Flags().GetBool("normalised")
	}
	n, err := reaction.FromReactions("network", args,
		reaction.WithRegistry(a.lib),
		reaction.WithLogger(a.logger),
		reaction.WithThermodynamics(a.cfg.GasConstant, a.cfg.Temperature),
	)
	if err != nil {
		return err
	}
	m, err := n.AsNetworkModel(normalised)
	if err != nil {
		return err
	}
	a.observe(m)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, field("species", strings.Join(n.Species(), ", ")))
	for i, s := range m.BasisVectors().States {
		fmt.Fprintf(out, "  %s = [%s]\n", s.X, n.Species()[i])
	}
	return printRelations(out, m)
}

func (a *app) stoichiometry(cmd *cobra.Command, args []string) error {
	n, err := a.catalog().GetNetwork(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, part := range []struct {
		title string
		rows  func(i int) []string
	}{
		{"forward", matrixRow(n.ForwardStoichiometry().Row)},
		{"reverse", matrixRow(n.ReverseStoichiometry().Row)},
		{"net", matrixRow(n.Stoichiometry().Row)},
	} {
		fmt.Fprintln(out, titleStyle.Render(part.title))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		header := []string{"SPECIES"}
		for _, r := range n.Reactions() {
			label := r.Name
			if label == "" {
				label = r.Text
			}
			header = append(header, label)
		}
		fmt.Fprintln(w, strings.Join(header, "\t"))
		for i, s := range n.Species() {
			fmt.Fprintln(w, s+"\t"+strings.Join(part.rows(i), "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) library(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	libs := a.lib.Libraries()
	if len(args) == 1 {
		libs = []string{args[0]}
		if len(a.lib.Types(args[0])) == 0 {
			return fmt.Errorf("%w: no library %q", library.ErrUnknownComponent, args[0])
		}
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LIBRARY\tTYPE\tDESCRIPTION")
	for _, lib := range libs {
		for _, typ := range a.lib.Types(lib) {
			d, _ := a.lib.Definition(lib, typ)
			fmt.Fprintf(w, "%s\t%s\t%s\n", lib, typ, d.Description)
		}
	}
	return w.Flush()
}

func (a *app) check(cmd *cobra.Command, args []string) error {
	reg := a.catalog()
	names := args
	if len(names) == 0 {
		names = reg.ListModels()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := reg.AssembleAll(ctx, names)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tRELATIONS\tNONLINEAR\tSTATUS")
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t-\t%v\n", res.Name, res.Err)
			continue
		}
		var nonlinear int
		for _, n := range res.System.Nonlinear {
			if !symbolic.IsZero(n) {
				nonlinear++
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\tok\n", res.Name, len(res.System.Nonlinear), nonlinear)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d models failed to assemble", failed, len(results))
	}
	return nil
}
