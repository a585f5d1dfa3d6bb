package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/synthline/hotgraph/pkg/hotgraph"
)

// PrintStatsReport prints a formatted cache diagnostics report with colors
func PrintStatsReport(storePath string, stats hotgraph.Stats) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Println("hotgraph - Cache Diagnostics")
	bold.Println("============================")
	fmt.Printf("Store: %s\n", storePath)
	fmt.Printf("Revision: %d (%d nodes, %d edges)\n", stats.Revision, stats.Nodes, stats.Edges)
	fmt.Printf("Sync state: %s\n", stats.SyncState)
	fmt.Println()

	fmt.Printf("Focus size: %d\n", stats.FocusSize)
	fmt.Printf("Path cache entries: %d\n", stats.PathCacheSize)
	fmt.Printf("Total accesses: %d\n", stats.TotalAccesses)

	if stats.DirtyCount == 0 {
		green.Println("Dirty nodes: 0")
	} else {
		yellow.Printf("Dirty nodes: %d (run sync to flush)\n", stats.DirtyCount)
	}

	if len(stats.TopAccessed) > 0 {
		fmt.Println()
		bold.Println("TOP ACCESSED:")
		for _, a := range stats.TopAccessed {
			cyan.Printf("  %-20s", a.ID)
			fmt.Printf(" %d\n", a.Count)
		}
	}
}

// PrintPath prints a path query result as a hop chain.
func PrintPath(path []string) {
	green := color.New(color.FgGreen)
	green.Printf("%s", path[0])
	for _, id := range path[1:] {
		fmt.Print(" -> ")
		green.Printf("%s", id)
	}
	fmt.Printf("  (%d hops)\n", len(path)-1)
}

// PrintIDs prints an id list result, one line.
func PrintIDs(label string, ids []string) {
	bold := color.New(color.Bold)
	bold.Printf("%s: ", label)
	if len(ids) == 0 {
		fmt.Println("(none)")
		return
	}
	fmt.Println(strings.Join(ids, ", "))
}
