package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-kratos/scout/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	loader  = config.NewLoader()
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Discover MCP servers and delegate requests to them",
	Long: `Scout searches an MCP registry for a server able to handle a request,
then asks a language model to answer the request with that server's tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./scout.yaml)")
	flags.BoolP("debug", "d", false, "Enable debug logging")
	flags.StringP("api-key", "k", "", "API key for the model provider (env OPENAI_API_KEY)")
	flags.StringP("model", "m", "", "Model to use (env OPENAI_MODEL)")
	flags.StringP("base-url", "b", "", "Base URL of an OpenAI-compatible API (env OPENAI_BASE_URL)")
	flags.String("provider", "", "Model provider: openai or gemini")
	flags.String("registry-url", "", "MCP registry URL (env REGISTRY_URL)")

	bindings := map[string]string{
		"debug":          "debug",
		"model.api_key":  "api-key",
		"model.name":     "model",
		"model.base_url": "base-url",
		"model.provider": "provider",
		"registry.url":   "registry-url",
	}
	for key, name := range bindings {
		_ = loader.Viper().BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(searchCmd, askCmd, serveCmd)
}

// exitError reports an unsuccessful run whose outcome was already printed.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
