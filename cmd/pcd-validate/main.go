package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/tobsdb/pcddb/internal/decl"
)

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		args = []string{"./platform.pcd"}
	}

	cwd, _ := os.Getwd()
	for i, source := range args {
		if !path.IsAbs(source) {
			args[i] = path.Join(cwd, source)
		}
		fmt.Printf("Checking %s for errors\n", args[i])
	}

	_, err := decl.Build(context.Background(), 1, args...)
	if err != nil {
		fmt.Printf("Invalid PCD database; %s\n", err.Error())
		os.Exit(1)
	}

	fmt.Println("PCD checks successful: database is valid")
}
