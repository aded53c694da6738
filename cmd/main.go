package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opencurrent/opencurrent/cmd/service"
)

func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:   "opencurrent",
		Short: "opencurrent",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
