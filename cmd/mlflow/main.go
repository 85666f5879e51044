package main

import (
	"os"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
