package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/tomblancdev/aiproxy-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
