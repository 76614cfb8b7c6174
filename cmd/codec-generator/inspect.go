package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codec-generator/internal/errorsgen"
	"codec-generator/internal/gen"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
)

func newInspectCmd() *cobra.Command {
	var (
		models       []string
		service      string
		protocolName string
		target       string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print member nullability, builders and error aggregates of a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.LoadFiles(models...)
			if err != nil {
				return err
			}

			t, err := policy.ParseTarget(target)
			if err != nil {
				return err
			}

			settings, err := protocol.Lookup(protocolName)
			if err != nil {
				return err
			}

			return inspect(cmd.OutOrStdout(), m, model.ShapeID(service), settings, t)
		},
	}

	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "Smithy JSON AST model file (repeatable)")
	cmd.Flags().StringVar(&service, "service", "", "Absolute shape ID of the service (default: first service)")
	cmd.Flags().StringVar(&protocolName, "protocol", "awsJson1_1", "Protocol name")
	cmd.Flags().StringVar(&target, "target", policy.Client.String(), "client or server")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func inspect(out io.Writer, m *model.Model, service model.ShapeID, settings protocol.Settings, target policy.Target) error {
	svc, err := gen.ResolveService(m, service)
	if err != nil {
		return err
	}

	ops, err := m.Operations(svc.ID)
	if err != nil {
		return err
	}

	shapes := gen.Closure(m, svc, ops)

	ctx, err := protocol.NewContext(m, svc, shapes, protocol.Options{Protocol: settings, Target: target})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "service %s (%s, %s)\n\n", svc.ID, settings.Name, target)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tNULLABILITY\tCONSTRAINED")

	var builders []string

	for _, id := range shapes {
		s, ok := m.Shape(id)
		if !ok || s.Kind != model.KindStructure || model.IsUnit(id) {
			continue
		}

		if ctx.Builder(s) {
			builders = append(builders, ctx.Symbols.BuilderName(id))
		}

		for _, mem := range s.Members {
			n, err := ctx.Classifier.Nullability(mem)
			if err != nil {
				return err
			}

			reach, err := ctx.Classifier.MemberCanReachConstrained(mem)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s\t%s\t%t\n", mem.ID(), n, reach)
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "builders: %d\n", len(builders))

	for _, b := range builders {
		fmt.Fprintf(out, "  %s\n", b)
	}

	errs, err := errorsgen.New(ctx, gen.Codec(ctx)).CollectService(ops)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%sError: %d modeled errors\n", ctx.TypeName(svc), len(errs))

	for _, e := range errs {
		fault, _ := e.ErrorFault()
		retryable, _ := e.Retryable()
		fmt.Fprintf(out, "  %s\t%s\tretryable=%t\n", ctx.TypeName(e), fault, retryable)
	}

	return nil
}
