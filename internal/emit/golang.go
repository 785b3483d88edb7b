package emit

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/KromDaniel/shieldgen/internal/codegen"
	"github.com/KromDaniel/shieldgen/internal/table"
)

// GoOptions configures RenderGo.
type GoOptions struct {
	// Package is the package clause of the generated file.
	Package string
	// Unexported lowercases the generated top-level identifiers.
	Unexported bool
}

type goGenerator struct {
	opts GoOptions
	file *jen.File
}

// RenderGo renders the table as a self-contained Go file declaring the entry
// types, MaxObs, SLen and the Strategy array.
func RenderGo(tbl *table.Table, opts GoOptions) ([]byte, error) {
	if opts.Package == "" {
		return nil, fmt.Errorf("package cannot be empty")
	}
	g := &goGenerator{opts: opts, file: jen.NewFile(opts.Package)}
	g.file.HeaderComment(codegen.GeneratedNote)

	g.declareTypes()
	g.file.Const().Defs(
		jen.Id(g.name(codegen.GoMaxObsName)).Op("=").Lit(tbl.MaxObs),
		jen.Id(g.name(codegen.GoCountName)).Op("=").Lit(len(tbl.Entries)),
	)

	items := make([]jen.Code, 0, len(tbl.Entries))
	for _, e := range tbl.Entries {
		items = append(items, g.entry(e))
	}
	g.file.Var().Id(g.name(codegen.GoArrayName)).Op("=").
		Index(jen.Id(g.name(codegen.GoCountName))).Id(g.name(codegen.GoEntryType)).
		ValuesFunc(func(grp *jen.Group) {
			for _, item := range items {
				grp.Line().Add(item)
			}
			if len(items) > 0 {
				grp.Line()
			}
		})

	var buf bytes.Buffer
	if err := g.file.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render Go table: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *goGenerator) name(n string) string {
	if g.opts.Unexported {
		return codegen.LowerFirst(n)
	}
	return n
}

func (g *goGenerator) declareTypes() {
	pos, snap, action, entry := g.name(codegen.GoPositionType), g.name(codegen.GoSnapshotType),
		g.name(codegen.GoActionType), g.name(codegen.GoEntryType)

	g.file.Type().Id(pos).Struct(
		jen.Id("X").Int(),
		jen.Id("Y").Int(),
	)
	g.file.Type().Id(snap).Struct(
		jen.Id("Position").Id(pos),
		jen.Id("Velocity").Int(),
		jen.Id("Orientation").Int(),
		jen.Id("Acceleration").Int(),
	)
	g.file.Comment(fmt.Sprintf("%s.Tag is 'M' (go) or 'T' (turn).", action))
	g.file.Type().Id(action).Struct(
		jen.Id("Tag").Byte(),
		jen.Id("Code").Int(),
	)
	g.file.Type().Id(entry).Struct(
		jen.Id("CPS").Id(snap),
		jen.Id("Phase").Int(),
		jen.Id("Count").Int(),
		jen.Id("Obstacles").Index().Id(snap),
		jen.Id("Action").Id(action),
	)
}

func field(name string, value jen.Code) jen.Code {
	return jen.Id(name).Op(":").Add(value)
}

func (g *goGenerator) snapshot(s table.Snapshot) *jen.Statement {
	return jen.Id(g.name(codegen.GoSnapshotType)).Values(
		field("Position", jen.Id(g.name(codegen.GoPositionType)).Values(
			field("X", jen.Lit(s.Position.X)),
			field("Y", jen.Lit(s.Position.Y)),
		)),
		field("Velocity", jen.Lit(s.Velocity)),
		field("Orientation", jen.Lit(s.Orientation)),
		field("Acceleration", jen.Lit(s.Acceleration)),
	)
}

func (g *goGenerator) entry(e table.Entry) jen.Code {
	fields := []jen.Code{
		field("CPS", g.snapshot(e.CPS)),
		field("Phase", jen.Lit(e.Phase)),
		field("Count", jen.Lit(e.Count)),
	}
	if len(e.Obstacles) > 0 {
		fields = append(fields, field("Obstacles", jen.Index().Id(g.name(codegen.GoSnapshotType)).ValuesFunc(func(grp *jen.Group) {
			for _, o := range e.Obstacles {
				grp.Add(g.snapshot(o))
			}
		})))
	}
	fields = append(fields, field("Action", jen.Id(g.name(codegen.GoActionType)).Values(
		field("Tag", jen.LitRune(rune(e.Action.Tag))),
		field("Code", jen.Lit(e.Action.Code)),
	)))
	return jen.Values(fields...)
}
