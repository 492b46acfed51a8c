// internal/cli/judge.go
package llmeval

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/judge"
	"github.com/anastev982/llm-eval-framework/internal/providerfactory"
)

var judgeArgs struct {
	taskType  string
	input     string
	answer    string
	reference string
}

// judgeCmd grades one answer with the judge model.
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Score one model answer with an LLM judge",
	Long: `The 'judge' command asks the judge model (--judgeModel, or the first configured
model) to grade a single answer from 1 to 5 against an optional reference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		model := cfg.JudgeModel
		if model == "" {
			model = appconfig.DefaultModel
			if models := cfg.Models(); len(models) > 0 {
				model = models[0]
			}
		}

		provider, err := providerfactory.NewChatProvider(cfg, nil)
		if err != nil {
			return fmt.Errorf("error creating provider: %w", err)
		}
		defer provider.Close()

		grader, err := judge.New(provider, model)
		if err != nil {
			return err
		}
		verdict := grader.Evaluate(commandContext(cmd), judgeArgs.taskType, judgeArgs.input, judgeArgs.answer, judgeArgs.reference)

		out := cmd.OutOrStdout()
		scoreColor := color.New(color.FgGreen, color.Bold)
		if !verdict.Valid {
			scoreColor = color.New(color.FgRed, color.Bold)
		}
		scoreColor.Fprintf(out, "Score: %g\n", verdict.Score)
		fmt.Fprintf(out, "Justification: %s\n", verdict.Justification)
		return nil
	},
}

func init() {
	flags := judgeCmd.Flags()
	flags.StringVar(&judgeArgs.taskType, "taskType", "summarization", "task description given to the judge")
	flags.StringVar(&judgeArgs.input, "input", "", "input shown to the model")
	flags.StringVar(&judgeArgs.answer, "answer", "", "model answer to grade")
	flags.StringVar(&judgeArgs.reference, "reference", "", "reference answer (optional)")
	_ = judgeCmd.MarkFlagRequired("answer")

	rootCmd.AddCommand(judgeCmd)
}
