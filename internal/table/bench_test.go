package table

import (
	"fmt"
	"strings"
	"testing"

	"github.com/KromDaniel/shieldgen/internal/strategy"
)

// benchDump builds a dump of n states, each with four obstacles and three guards.
func benchDump(n int) string {
	var b strings.Builder
	b.WriteString("Strategy to avoid losing:\n\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "State: ( Car.Move Obs.Drive ) phase=%d count=%d cps_state.position.x=%d cps_state.position.y=-%d cps_state.vel=500", i%4, i%3, i, i)
		for o := 0; o < 4; o++ {
			fmt.Fprintf(&b, " obs_state[%d].position.x=%d obs_state[%d].vel=%d", o, o*10, o, o)
		}
		b.WriteString("\nWhen you are in (cps_state.vel<=2000), take transition Car.Move->Car.Turn { 1, tau, go(5) }\n")
		b.WriteString("When you are in (cps_state.vel>2000), take transition Car.Move->Car.Move { 1, tau, go(-3) }\n")
		b.WriteString("When you are in (true), take transition Car.Idle->Car.Move { 1, tau, go(0) }\n")
		b.WriteString("While you are in (true), wait.\n\n")
	}
	return b.String()
}

func BenchmarkParseAndBuild(b *testing.B) {
	dump := benchDump(500)
	b.SetBytes(int64(len(dump)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		states, err := strategy.ParseStates(strategy.Load(dump))
		if err != nil {
			b.Fatal(err)
		}
		tbl, err := Build(states, nil)
		if err != nil {
			b.Fatal(err)
		}
		if len(tbl.Entries) != 1000 {
			b.Fatalf("got %d entries", len(tbl.Entries))
		}
	}
}
