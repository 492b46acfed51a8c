// cmd/llmeval/main.go
package main

import (
	cmd "github.com/anastev982/llm-eval-framework/internal/cli"
)

// main starts the llmeval CLI by delegating to the cobra root command.
func main() {
	cmd.Execute()
}
