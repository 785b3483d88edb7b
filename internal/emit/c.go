// Package emit renders a strategy table as C and Go source and splices the C
// declarations into an existing controller source file.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KromDaniel/shieldgen/internal/codegen"
	"github.com/KromDaniel/shieldgen/internal/table"
)

// RenderC returns the SLEN constant and the strategy array, e.g.
//
//	const int SLEN = 1;
//	const ST_ENTRY strategy[1] = {
//		{
//			{{{120, -30}, 500, 0, 0}, 1, 0, {
//				{{10, 20}, 3, 0, 0}
//			}},
//			{'M', 5}
//		}
//	};
//
// Entries without obstacles use the shorter {cps, phase, count} state form.
func RenderC(entries []table.Entry) string {
	var b strings.Builder
	n := strconv.Itoa(len(entries))
	fmt.Fprintf(&b, "const int %s = %s;\n", codegen.CountName, n)
	fmt.Fprintf(&b, "const %s %s[%s] = {", codegen.EntryType, codegen.ArrayName, n)
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("\n\t{\n\t\t")
		writeState(&b, e)
		fmt.Fprintf(&b, ",\n\t\t{%s, %d}\n\t}", codegen.CharLiteral(e.Action.Tag), e.Action.Code)
	}
	if len(entries) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString("};")
	return b.String()
}

func writeState(b *strings.Builder, e table.Entry) {
	b.WriteByte('{')
	writeSnapshot(b, e.CPS)
	fmt.Fprintf(b, ", %d, %d", e.Phase, e.Count)
	if len(e.Obstacles) > 0 {
		b.WriteString(", {")
		for i, o := range e.Obstacles {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString("\n\t\t\t")
			writeSnapshot(b, o)
		}
		b.WriteString("\n\t\t}")
	}
	b.WriteByte('}')
}

func writeSnapshot(b *strings.Builder, s table.Snapshot) {
	fmt.Fprintf(b, "{{%d, %d}, %d, %d, %d}", s.Position.X, s.Position.Y, s.Velocity, s.Orientation, s.Acceleration)
}
