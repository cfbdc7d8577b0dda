package cmd

import (
	"fmt"
	"sort"

	"github.com/karlandr1/beryl-go/pkg/beryl"
	"github.com/maruel/natural"
)

// printVars lists the REPL's current global bindings, naturally sorted
// (so `var10` doesn't print before `var2`) rather than by byte order.
func printVars(engine *beryl.Engine) {
	names := engine.Vars()
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	for _, n := range names {
		fmt.Println(n)
	}
}
