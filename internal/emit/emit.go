// Package emit renders mapped tables into Go source files. All rendering
// goes through jennifer so imports and formatting are always correct, and
// the output is a pure function of the input models.
package emit

import (
	"bytes"

	"github.com/dave/jennifer/jen"

	"github.com/koustreak/autostruct/internal/catalog"
	"github.com/koustreak/autostruct/internal/errs"
	"github.com/koustreak/autostruct/internal/naming"
	"github.com/koustreak/autostruct/internal/typemap"
)

const header = "Code generated by autostruct. DO NOT EDIT."

// Profile selects the framework flavor of the generated structs.
type Profile string

const (
	// ProfileNone emits plain structs with no tags.
	ProfileNone Profile = "none"
	// ProfileSQLX adds db struct tags and a table name constant per struct.
	ProfileSQLX Profile = "sqlx"
)

// Field is one rendered struct field, in column ordinal order.
type Field struct {
	Ident   string
	Column  string
	Type    typemap.Type
	Comment string // trailing attribute note, e.g. "primary key, identity"
}

// Model is a fully resolved table ready for rendering.
type Model struct {
	Ident  string
	Schema string
	Table  string
	Fields []Field
}

func (m Model) qualified() string {
	if m.Schema == "" {
		return m.Table
	}
	return m.Schema + "." + m.Table
}

// Emitter renders models for one generation run. Supporting declarations
// registered by multiple tables are emitted once, in first-seen order.
type Emitter struct {
	pkg     string
	profile Profile
	seen    map[catalog.QualifiedName]bool
	aux     []typemap.Aux
}

func New(pkg string, profile Profile) *Emitter {
	return &Emitter{
		pkg:     pkg,
		profile: profile,
		seen:    map[catalog.QualifiedName]bool{},
	}
}

// Register records the supporting declarations a table's columns need.
// A declaration already registered by an earlier table is skipped.
func (e *Emitter) Register(aux []typemap.Aux) {
	for _, a := range aux {
		if e.seen[a.Name] {
			continue
		}
		e.seen[a.Name] = true
		e.aux = append(e.aux, a)
	}
}

// AuxCount reports how many enum and struct declarations are registered.
func (e *Emitter) AuxCount() (enums, structs int) {
	for _, a := range e.aux {
		if a.Kind == typemap.AuxEnum {
			enums++
		} else {
			structs++
		}
	}
	return enums, structs
}

// Table renders one table into its own source file.
func (e *Emitter) Table(m Model) ([]byte, error) {
	f := e.newFile()
	e.renderTable(f, m)
	return render(f, m.Ident)
}

// AuxFile renders every registered supporting declaration into one shared
// file. It reports false when no table needed any.
func (e *Emitter) AuxFile() ([]byte, bool, error) {
	if len(e.aux) == 0 {
		return nil, false, nil
	}
	f := e.newFile()
	for _, a := range e.aux {
		e.renderAux(f, a)
	}
	b, err := render(f, "aux declarations")
	return b, true, err
}

// Single renders all registered declarations and all models into one file,
// declarations first.
func (e *Emitter) Single(models []Model) ([]byte, error) {
	f := e.newFile()
	for _, a := range e.aux {
		e.renderAux(f, a)
	}
	for _, m := range models {
		e.renderTable(f, m)
	}
	return render(f, "single file output")
}

func (e *Emitter) newFile() *jen.File {
	f := jen.NewFile(e.pkg)
	f.HeaderComment(header)
	return f
}

func (e *Emitter) renderTable(f *jen.File, m Model) {
	f.Commentf("%s corresponds to table %q.", m.Ident, m.qualified())
	f.Type().Id(m.Ident).StructFunc(func(g *jen.Group) {
		for _, fl := range m.Fields {
			st := g.Id(fl.Ident).Add(fl.Type.Code())
			if e.profile == ProfileSQLX {
				st = st.Tag(map[string]string{"db": fl.Column})
			}
			if fl.Comment != "" {
				st.Comment(fl.Comment)
			}
		}
	})

	if e.profile == ProfileSQLX {
		f.Commentf("%sTable is the relation %s maps to.", m.Ident, m.Ident)
		f.Const().Id(m.Ident + "Table").Op("=").Lit(m.qualified())
	}
}

func (e *Emitter) renderAux(f *jen.File, a typemap.Aux) {
	switch a.Kind {
	case typemap.AuxEnum:
		f.Commentf("%s mirrors the database enum type %q.", a.Ident, a.Name.String())
		f.Type().Id(a.Ident).String()
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, label := range a.Labels {
				g.Id(a.Ident + naming.Exported(label)).Id(a.Ident).Op("=").Lit(label)
			}
		})
		f.Commentf("%sValues lists every label of %s in catalog order.", a.Ident, a.Ident)
		f.Func().Id(a.Ident+"Values").Params().Index().Id(a.Ident).Block(
			jen.Return(jen.Index().Id(a.Ident).ValuesFunc(func(g *jen.Group) {
				for _, label := range a.Labels {
					g.Id(a.Ident + naming.Exported(label))
				}
			})),
		)
	case typemap.AuxStruct:
		f.Commentf("%s mirrors the database composite type %q.", a.Ident, a.Name.String())
		f.Type().Id(a.Ident).StructFunc(func(g *jen.Group) {
			for _, fl := range a.Fields {
				st := g.Id(fl.Ident).Add(fl.Type.Code())
				if e.profile == ProfileSQLX {
					st.Tag(map[string]string{"db": fl.Column})
				}
			}
		})
	}
}

func render(f *jen.File, what string) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errs.Wrap(errs.KindWrite, "failed to render "+what, err)
	}
	return buf.Bytes(), nil
}
