package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/capability"
)

var processCmd = &cobra.Command{
	Use:   "process <tool> [content]",
	Short: "Run a content-processing capability",
	Long: `Dispatch content to one of the named processing tools
(analyze_article, summarize_content, extract_keywords, rate_importance,
generate_newsletter). Content is read from the argument, or from stdin
when omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	var content string
	if len(args) > 1 {
		content = args[1]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		content = strings.TrimSpace(string(data))
	}

	srv := capability.NewServer(zap.NewNop(), 0)
	srv.Start()
	defer srv.Stop()

	result := srv.Process(context.Background(), capability.Capability(args[0]), content)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
