package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newRecordsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and patch documents in the HR document store",
	}
	cmd.AddCommand(newInspectCmd(g))
	cmd.AddCommand(newPatchCmd(g))
	return cmd
}

type inspectOptions struct {
	collection string
	id         string
	filters    []string
	limit      int64
}

func newInspectCmd(g *globalOptions) *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print matching documents as indented JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m, err := g.connectMongo(ctx)
			if err != nil {
				return err
			}
			defer m.Close(context.Background())
			return runInspect(ctx, newMongoStore(m.DB, opts.collection), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.collection, "collection", "", "Collection name (required)")
	cmd.Flags().StringVar(&opts.id, "id", "", "Document _id")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Equality filter field=value (repeatable)")
	cmd.Flags().Int64Var(&opts.limit, "limit", 20, "Maximum documents to print")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}

func runInspect(ctx context.Context, store recordStore, opts inspectOptions, out io.Writer) error {
	if strings.TrimSpace(opts.id) != "" && len(opts.filters) > 0 {
		return withCode(exitUsage, errors.New("use either --id or --filter, not both"))
	}
	var filter bson.D
	if strings.TrimSpace(opts.id) != "" {
		filter = idFilter(opts.id)
	} else {
		f, err := buildFilter(opts.filters)
		if err != nil {
			return withCode(exitUsage, err)
		}
		filter = f
	}

	docs, err := store.Find(ctx, filter, opts.limit)
	if err != nil {
		return withCode(exitDB, fmt.Errorf("query %s: %w", opts.collection, err))
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "no documents matched")
		return nil
	}
	for _, doc := range docs {
		if err := printDocument(out, doc); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "%d document(s)\n", len(docs))
	return nil
}

type patchOptions struct {
	collection string
	id         string
	sets       []string
	actor      string
	dryRun     bool
}

func newPatchCmd(g *globalOptions) *cobra.Command {
	var opts patchOptions
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Apply $set to one document and record an audit entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m, err := g.connectMongo(ctx)
			if err != nil {
				return err
			}
			defer m.Close(context.Background())

			var auditor auditRecorder
			if !opts.dryRun {
				pg, err := g.connectPostgres(ctx)
				if err != nil {
					return err
				}
				defer pg.Close()
				auditor = g.auditService(pg)
			}
			return runPatch(ctx, newMongoStore(m.DB, opts.collection), auditor, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.collection, "collection", "", "Collection name (required)")
	cmd.Flags().StringVar(&opts.id, "id", "", "Document _id (required)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Field assignment field=value (repeatable)")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "Operator name recorded in the audit log (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show the change without applying it")
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func runPatch(ctx context.Context, store recordStore, auditor auditRecorder, opts patchOptions, out io.Writer) error {
	if strings.TrimSpace(opts.actor) == "" {
		return withCode(exitUsage, errors.New("--actor is required"))
	}
	set, err := buildSet(opts.sets)
	if err != nil {
		return withCode(exitUsage, err)
	}

	filter := idFilter(opts.id)
	before, err := store.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, errNoDocument) {
			return withCode(exitValidation, fmt.Errorf("%s/%s: %w", opts.collection, opts.id, err))
		}
		return withCode(exitDB, err)
	}

	fmt.Fprintln(out, "before:")
	if err := printDocument(out, before); err != nil {
		return err
	}
	fmt.Fprintln(out, "$set:")
	if err := printDocument(out, set); err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Fprintln(out, "dry run: no changes applied")
		return nil
	}
	if auditor == nil {
		return withCode(exitUsage, errors.New("audit log unavailable"))
	}

	matched, err := store.Set(ctx, filter, set)
	if err != nil {
		return withCode(exitDBWrite, fmt.Errorf("update %s/%s: %w", opts.collection, opts.id, err))
	}
	if matched == 0 {
		return withCode(exitValidation, fmt.Errorf("%s/%s: %w", opts.collection, opts.id, errNoDocument))
	}

	after, err := store.FindOne(ctx, filter)
	if err != nil {
		return withCode(exitDB, err)
	}
	fmt.Fprintln(out, "after:")
	if err := printDocument(out, after); err != nil {
		return err
	}

	oldValues := make(map[string]any, len(set))
	newValues := make(map[string]any, len(set))
	for _, e := range set {
		oldValues[e.Key] = lookupPath(before, e.Key)
		newValues[e.Key] = e.Value
	}
	target := opts.collection + "/" + strings.TrimSpace(opts.id)
	if _, err := auditor.Record(ctx, opts.actor, "records.patch", target, oldValues, newValues); err != nil {
		return withCode(exitDBWrite, fmt.Errorf("change applied but audit entry failed: %w", err))
	}
	fmt.Fprintf(out, "patched %s\n", target)
	return nil
}

func printDocument(out io.Writer, doc any) error {
	raw, err := bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}

// lookupPath resolves a dotted field path in a decoded document.
func lookupPath(doc bson.M, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case bson.M:
			cur = v[part]
		case map[string]any:
			cur = v[part]
		case bson.D:
			var next any
			for _, e := range v {
				if e.Key == part {
					next = e.Value
					break
				}
			}
			cur = next
		default:
			return nil
		}
	}
	return cur
}
