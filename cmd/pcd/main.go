package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tobsdb/pcddb/internal/decl"
	"github.com/tobsdb/pcddb/internal/report"
	"github.com/tobsdb/pcddb/pkg"
)

func main() {
	var view, filter string
	var workers int
	var log_options pkg.LogOptions

	flag.StringVar(&view, "view", "token", "Report view. Options: token, module, none")
	flag.StringVar(&filter, "filter", "", "Module name glob for the module view")
	flag.IntVar(&workers, "workers", 1, "Modules ingested in parallel")
	flag.BoolVar(&log_options.ShouldLog, "log", false, "Enable logging")
	flag.BoolVar(&log_options.ShowDebugLogs, "dbg", false, "Show debug logs")

	flag.Parse()
	pkg.SetLogLevel(log_options.Level())

	if flag.NArg() == 0 {
		fmt.Println("Usage: pcd [flags] <source>...")
		os.Exit(1)
	}

	module_filter, err := report.NewModuleFilter(filter)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	m, err := decl.Build(context.Background(), workers, flag.Args()...)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	switch view {
	case "token":
		fmt.Print(report.ByToken(m))
	case "module":
		fmt.Print(report.ByModule(m, module_filter))
	case "none":
	default:
		fmt.Println("Unknown view:", view)
		os.Exit(1)
	}

	fp, err := m.Fingerprint()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("%d tokens, %d modules, fingerprint %016x\n", m.Len(), len(m.GetAllModuleArray()), fp)
}
