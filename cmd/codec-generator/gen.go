package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"codec-generator/internal/config"
	"codec-generator/internal/gen"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
)

// genParams are the gen flags. Set flags override the config file.
type genParams struct {
	configPath       string
	models           []string
	service          string
	protocol         string
	target           string
	pkg              string
	out              string
	suppressDefaults bool
	hooks            []string
}

func newGenCmd() *cobra.Command {
	var params genParams

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the codec package of a service",
		Example: `  codec-generator gen --config examples/shop/codegen.yaml
  codec-generator gen --model shop.json --service example.shop#Shop --protocol restJson1 --out ./shop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := params.load(cmd)
			if err != nil {
				return err
			}

			return runGen(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&params.configPath, "config", "c", "", "Path to codegen.yaml")
	cmd.Flags().StringArrayVarP(&params.models, "model", "m", nil, "Smithy JSON AST model file (repeatable)")
	cmd.Flags().StringVar(&params.service, "service", "", "Absolute shape ID of the service")
	cmd.Flags().StringVar(&params.protocol, "protocol", "", "Protocol name")
	cmd.Flags().StringVar(&params.target, "target", "", "client or server")
	cmd.Flags().StringVar(&params.pkg, "pkg", "", "Generated package name")
	cmd.Flags().StringVarP(&params.out, "out", "o", "", "Output directory")
	cmd.Flags().BoolVar(&params.suppressDefaults, "suppress-defaults", false, "Omit members equal to their modeled default")
	cmd.Flags().StringArrayVar(&params.hooks, "hook", nil, "Built-in hook name (repeatable)")

	return cmd
}

// load reads the config file, if any, and applies the set flags on top.
func (p *genParams) load(cmd *cobra.Command) (*config.File, error) {
	var (
		cfg *config.File
		err error
	)

	if p.configPath != "" {
		cfg, err = config.LoadFile(p.configPath)
	} else {
		cfg, err = config.Parse(nil)
	}

	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("model") {
		cfg.Models = p.models
	}

	if flags.Changed("service") {
		cfg.Service = p.service
	}

	if flags.Changed("protocol") {
		cfg.Protocol = p.protocol
	}

	if flags.Changed("target") {
		cfg.Target = p.target
	}

	if flags.Changed("out") {
		cfg.Output = p.out
	}

	if flags.Changed("pkg") {
		cfg.Package = p.pkg
	}

	if flags.Changed("suppress-defaults") {
		cfg.SuppressDefaults = p.suppressDefaults
	}

	if flags.Changed("hook") {
		cfg.Hooks = p.hooks
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	return cfg, nil
}

func runGen(cmd *cobra.Command, cfg *config.File) error {
	m, err := model.LoadFiles(cfg.ModelPaths()...)
	if err != nil {
		return err
	}

	target, err := policy.ParseTarget(cfg.Target)
	if err != nil {
		return err
	}

	reg, err := cfg.HookRegistry()
	if err != nil {
		return err
	}

	g := gen.NewGenerator(gen.GeneratorConfig{
		PackageName:      cfg.PackageName(),
		OutputDir:        cfg.OutputDir(),
		Service:          model.ShapeID(cfg.Service),
		Protocol:         cfg.Protocol,
		Target:           target,
		SuppressDefaults: cfg.SuppressDefaults,
		Hooks:            reg,
	})

	files, err := g.Generate(m)

	diags := g.Diagnostics()
	for _, d := range diags.Warnings {
		logger.Info("warning:", d.String())
	}

	for _, d := range diags.Infos {
		logger.Verbose(d.String())
	}

	if err != nil {
		return fmt.Errorf("generating %s: %w", cfg.Service, err)
	}

	if err := gen.WriteFiles(files, cfg.OutputDir()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "generated %d files in %s\n", len(files), cfg.OutputDir())

	return nil
}
