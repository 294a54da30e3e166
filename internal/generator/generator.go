// Package generator orchestrates one generation run: capture a catalog
// snapshot, resolve it, map and render every table, and publish the
// rendered files atomically.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/koustreak/autostruct/internal/catalog"
	"github.com/koustreak/autostruct/internal/config"
	"github.com/koustreak/autostruct/internal/database"
	"github.com/koustreak/autostruct/internal/database/mysql"
	"github.com/koustreak/autostruct/internal/database/postgres"
	"github.com/koustreak/autostruct/internal/database/sqlite"
	"github.com/koustreak/autostruct/internal/emit"
	"github.com/koustreak/autostruct/internal/errs"
	"github.com/koustreak/autostruct/internal/filestore"
	miniostore "github.com/koustreak/autostruct/internal/filestore/minio"
	"github.com/koustreak/autostruct/internal/logger"
	"github.com/koustreak/autostruct/internal/naming"
	"github.com/koustreak/autostruct/internal/typemap"
)

// Report summarizes a completed run.
type Report struct {
	// Tables is the number of structs generated.
	Tables int
	// Enums and Composites count the shared declarations emitted.
	Enums      int
	Composites int
	// Excluded is the number of tables skipped by the exclude list.
	Excluded int
	// Files lists the written file names, relative to the output directory.
	Files []string
	// Warnings carry every type the catalog could not resolve.
	Warnings []catalog.Warning
}

type renderedFile struct {
	name string
	data []byte
}

// Run executes one generation run. On any error the previous contents of
// the output directory are left untouched.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Report, error) {
	log.Debugf("starting run: %s", cfg)

	reader, err := openReader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	err = reader.Ping(pingCtx)
	cancel()
	if err != nil {
		return nil, err
	}

	snap, err := reader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Build(snap)
	if err != nil {
		return nil, err
	}
	log.Debugf("resolved catalog: %d tables, %d enums, %d composites",
		len(cat.Tables()), len(cat.Enums()), len(cat.Composites()))
	for _, w := range cat.Warnings() {
		log.WarnWith("unsupported catalog type", map[string]any{
			"object": w.Object,
			"field":  w.Field,
			"type":   w.RawType,
		})
	}

	excluded := map[string]bool{}
	for _, name := range cfg.Exclude {
		excluded[name] = true
	}
	var tables []catalog.Table
	for _, t := range cat.Tables() {
		// Both bare and schema-qualified names exclude a table.
		if excluded[t.Name.Name] || excluded[t.Name.String()] {
			log.Debugf("excluding table %s", t.Name)
			continue
		}
		tables = append(tables, t)
	}

	names := naming.NewResolver(cfg.Singular)
	rawNames := make([]string, len(tables))
	for i, t := range tables {
		rawNames[i] = t.Name.Name
	}
	if err := names.CheckDistinct(rawNames); err != nil {
		return nil, err
	}

	mapper := typemap.New(names)
	emitter := emit.New(cfg.Package, emit.Profile(cfg.Framework))

	// Build all models first so aux declarations register in table order.
	models := make([]emit.Model, len(tables))
	for i, t := range tables {
		m, err := buildModel(t, names, mapper, emitter)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}

	files, err := renderAll(ctx, cfg, emitter, models, names)
	if err != nil {
		return nil, err
	}

	if err := publishLocal(cfg.OutputDir, files); err != nil {
		return nil, err
	}
	report := &Report{
		Tables:   len(models),
		Excluded: len(cat.Tables()) - len(tables),
		Warnings: cat.Warnings(),
	}
	report.Enums, report.Composites = emitter.AuxCount()
	for _, f := range files {
		report.Files = append(report.Files, f.name)
	}
	log.Infof("generated %d structs into %s", report.Tables, cfg.OutputDir)

	if cfg.Publish != nil {
		if err := publishRemote(ctx, cfg.Publish, files, log); err != nil {
			return report, err
		}
	}

	return report, nil
}

func openReader(ctx context.Context, cfg *config.Config) (database.Reader, error) {
	kind, err := database.KindFromURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	switch kind {
	case database.KindPostgres:
		return postgres.New(connectCtx, postgres.Config{URL: cfg.DatabaseURL})
	case database.KindMySQL:
		return mysql.New(connectCtx, mysql.Config{URL: cfg.DatabaseURL})
	default:
		return sqlite.New(connectCtx, sqlite.Config{URL: cfg.DatabaseURL})
	}
}

func buildModel(t catalog.Table, names *naming.Resolver, mapper *typemap.Mapper, emitter *emit.Emitter) (emit.Model, error) {
	rawColumns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		rawColumns[i] = c.Name
	}
	if err := names.CheckFieldsDistinct(t.Name.Name, rawColumns); err != nil {
		return emit.Model{}, err
	}

	m := emit.Model{
		Ident:  names.TableIdent(t.Name.Name),
		Schema: t.Name.Schema,
		Table:  t.Name.Name,
		Fields: make([]emit.Field, len(t.Columns)),
	}

	for i, c := range t.Columns {
		typ, aux := mapper.Map(c.Type)
		emitter.Register(aux)
		// Key columns stay bare even when the engine reports them nullable,
		// and a nil slice already expresses NULL.
		if c.Nullable && !c.IsPrimary && !c.IsIdentity && typ.Kind != typemap.Slice {
			typ = typemap.Ptr(typ)
		}
		m.Fields[i] = emit.Field{
			Ident:   names.ColumnIdent(c.Name),
			Column:  c.Name,
			Type:    typ,
			Comment: columnNote(c),
		}
	}
	return m, nil
}

// columnNote builds the trailing comment that carries column attributes the
// Go type alone cannot express.
func columnNote(c catalog.Column) string {
	var parts []string
	if c.IsPrimary {
		parts = append(parts, "primary key")
	}
	if c.IsIdentity {
		parts = append(parts, "identity")
	}
	if c.HasDefault && !c.IsIdentity {
		parts = append(parts, "has default")
	}
	switch t := c.Type.(type) {
	case *catalog.Scalar:
		if t.Kind == catalog.ScalarDecimal && t.Precision != nil {
			if t.Scale != nil {
				parts = append(parts, fmt.Sprintf("numeric(%d,%d)", *t.Precision, *t.Scale))
			} else {
				parts = append(parts, fmt.Sprintf("numeric(%d)", *t.Precision))
			}
		}
	case *catalog.Opaque:
		parts = append(parts, fmt.Sprintf("database type %q", t.Raw))
	}
	return strings.Join(parts, ", ")
}

func renderAll(ctx context.Context, cfg *config.Config, emitter *emit.Emitter, models []emit.Model, names *naming.Resolver) ([]renderedFile, error) {
	if cfg.SingleFile {
		data, err := emitter.Single(models)
		if err != nil {
			return nil, err
		}
		return []renderedFile{{name: cfg.Package + "_gen.go", data: data}}, nil
	}

	const auxFileName = "types_gen.go"

	files := make([]renderedFile, len(models))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := names.FileName(m.Ident) + "_gen.go"
			if name == auxFileName {
				return errs.Newf(errs.KindNameCollision,
					"table %q renders to %s, which is reserved for shared type declarations", m.Table, auxFileName)
			}
			data, err := emitter.Table(m)
			if err != nil {
				return err
			}
			files[i] = renderedFile{name: name, data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aux, ok, err := emitter.AuxFile()
	if err != nil {
		return nil, err
	}
	if ok {
		files = append(files, renderedFile{name: auxFileName, data: aux})
	}
	return files, nil
}

// publishLocal stages the rendered files next to the output directory and
// swaps them in only when every write succeeded, so a failed run never
// clobbers the previous output.
func publishLocal(outputDir string, files []renderedFile) error {
	outputDir = filepath.Clean(outputDir)
	stage := fmt.Sprintf("%s.stage-%s", outputDir, uuid.NewString()[:8])

	if err := os.MkdirAll(stage, 0o755); err != nil {
		return errs.Wrap(errs.KindWrite, "failed to create staging directory", err)
	}
	cleanup := func() { _ = os.RemoveAll(stage) }

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(stage, f.name), f.data, 0o644); err != nil {
			cleanup()
			return errs.Wrap(errs.KindWrite, "failed to write "+f.name, err)
		}
	}

	old := ""
	if _, err := os.Stat(outputDir); err == nil {
		old = fmt.Sprintf("%s.old-%s", outputDir, uuid.NewString()[:8])
		if err := os.Rename(outputDir, old); err != nil {
			cleanup()
			return errs.Wrap(errs.KindWrite, "failed to move previous output aside", err)
		}
	}
	if err := os.Rename(stage, outputDir); err != nil {
		// Put the previous output back before reporting.
		if old != "" {
			_ = os.Rename(old, outputDir)
		}
		cleanup()
		return errs.Wrap(errs.KindWrite, "failed to publish output directory", err)
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}
	return nil
}

func publishRemote(ctx context.Context, pub *config.Publish, files []renderedFile, log *logger.Logger) error {
	fsCfg := filestore.DefaultConfig(pub.Endpoint, pub.AccessKey, pub.SecretKey)
	fsCfg.UseSSL = pub.UseSSL
	store, err := miniostore.New(ctx, fsCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureBucket(ctx, pub.Bucket); err != nil {
		return err
	}
	for _, f := range files {
		key := f.name
		if pub.Prefix != "" {
			key = path.Join(pub.Prefix, f.name)
		}
		if err := store.PutObject(ctx, pub.Bucket, key, bytes.NewReader(f.data), int64(len(f.data)), "text/x-go"); err != nil {
			return err
		}
	}
	log.Infof("published %d files to %s/%s", len(files), pub.Endpoint, pub.Bucket)
	return nil
}
