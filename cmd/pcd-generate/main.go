package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tobsdb/pcddb/internal/decl"
	"github.com/tobsdb/pcddb/internal/report"
	"github.com/tobsdb/pcddb/tools/generate"
)

func main() {
	var out, lang, filter string

	flag.StringVar(&out, "out", "", "Output directory. Prints to stdout when empty")
	flag.StringVar(&lang, "lang", "c", "Output language. Options: c, json")
	flag.StringVar(&filter, "filter", "", "Module name glob; json with no filter renders the whole database")

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage: pcd-generate [flags] <source>...")
		os.Exit(1)
	}

	m, err := decl.Build(context.Background(), 1, flag.Args()...)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if lang == "json" && filter == "" {
		data, err := generate.DatabaseJson(m)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		write(out, "PcdDatabase.json", data)
		return
	}

	module_filter, err := report.NewModuleFilter(filter)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ext := ".h"
	if lang == "json" {
		ext = ".json"
	}
	for _, rec := range report.ModuleRecords(m, module_filter) {
		data, err := generate.ToLang(m, rec.Key, lang)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		write(out, fmt.Sprintf("%s_%s_AutoGen%s", rec.Module.Name, rec.Module.Arch, ext), data)
	}
}

func write(out, name string, data []byte) {
	if out == "" {
		fmt.Println(string(data))
		return
	}

	if err := os.MkdirAll(out, 0755); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(out, name), data, 0644); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
