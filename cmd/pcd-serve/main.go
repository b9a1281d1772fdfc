package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tobsdb/pcddb/internal/auth"
	"github.com/tobsdb/pcddb/internal/conn"
	"github.com/tobsdb/pcddb/internal/decl"
	"github.com/tobsdb/pcddb/pkg"
)

func main() {
	var settings conn.ServerSettings
	var workers int
	var log_options pkg.LogOptions

	flag.IntVar(&settings.Port, "port", 7085, "listening port")
	flag.IntVar(&workers, "workers", 1, "Modules ingested in parallel")
	flag.BoolVar(&log_options.ShouldLog, "log", true, "Enable logging")
	flag.BoolVar(&log_options.ShowDebugLogs, "dbg", false, "Show debug logs")

	flag.Parse()
	pkg.SetLogLevel(log_options.Level())

	if flag.NArg() == 0 {
		fmt.Println("Usage: pcd-serve [flags] <source>...")
		os.Exit(1)
	}

	users, err := auth.UsersFromEnv()
	if err != nil {
		pkg.FatalLog(err)
	}
	if len(users) == 0 {
		pkg.WarnLog(auth.EnvUser, "is not set; connections are not authenticated")
	}
	settings.Users = users

	m, err := decl.Build(context.Background(), workers, flag.Args()...)
	if err != nil {
		pkg.FatalLog(err)
	}

	conn.NewServer(m, settings).Listen()
}
