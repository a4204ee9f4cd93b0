package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"interview-gateway/internal/config"
	"interview-gateway/internal/domain/contract"
	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/usecase"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send one prompt through the provider router",
	Long: `Send one prompt through the provider router and print the reply.
Reads the prompt from stdin when no argument is given.

Examples:
  server ask --provider fast-free "Say hello"
  echo "Summarize this role" | server ask --provider gemini`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providerName, _ := cmd.Flags().GetString("provider")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")

		prompt, err := readPrompt(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		sel := cfg.LLM.DefaultProvider
		if providerName != "" {
			if sel, err = entity.ParseProviderSelector(providerName); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		table, _, err := buildProviders(ctx, cfg.LLM)
		if err != nil {
			return err
		}
		router := usecase.NewProviderRouter(table, cfg.LLM.Timeout)

		resp, err := router.Call(ctx, sel, prompt, maxTokens)
		if err != nil {
			var llmErr *entity.LLMError
			if errors.As(err, &llmErr) {
				return fmt.Errorf("%s (%s): %s", llmErr.Provider, llmErr.Kind, llmErr.Message)
			}
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, resp.Content)
		fmt.Fprintf(cmd.ErrOrStderr(), "\n[%s %s, %dms]\n", resp.Provider, resp.Model, resp.Latency.Milliseconds())
		return nil
	},
}

func init() {
	askCmd.Flags().String("provider", "", "provider selector or alias (default: DEFAULT_PROVIDER)")
	askCmd.Flags().Int("max-tokens", contract.MaxTokensJobDescription, "maximum tokens to generate")
}

func readPrompt(args []string, stdin io.Reader) (string, error) {
	var prompt string
	if len(args) == 1 {
		prompt = args[0]
	} else {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		prompt = string(b)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}
	return prompt, nil
}

