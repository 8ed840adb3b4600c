package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single oracle invocation.
const DefaultTimeout = 30 * time.Second

// CommandProvider runs an external embedding program as the similarity
// oracle. The program receives {"text1": ..., "text2": ...} as JSON on
// stdin and must print a JSON object containing a "score" field in [0,1].
type CommandProvider struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewCommandProvider creates a provider for the given command with the
// default timeout.
func NewCommandProvider(command string, args ...string) *CommandProvider {
	return &CommandProvider{
		Command: command,
		Args:    args,
		Timeout: DefaultTimeout,
	}
}

type commandRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

type commandResponse struct {
	Score float64 `json:"score"`
}

// Similarity invokes the external command, timeout-bounded. Any failure —
// spawn error, timeout, malformed output, out-of-range score — surfaces as
// an error the orchestration layer treats as "no additional signal".
func (p *CommandProvider) Similarity(ctx context.Context, text1, text2 string) (float64, error) {
	if p.Command == "" {
		return 0, ErrUnavailable
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := json.Marshal(commandRequest{Text1: text1, Text2: text2})
	if err != nil {
		return 0, fmt.Errorf("encode similarity request: %w", err)
	}

	cmd := exec.CommandContext(ctxWithTimeout, p.Command, p.Args...)
	cmd.Stdin = bytes.NewReader(request)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("similarity command failed: %w", err)
	}

	score, err := parseScore(string(output))
	if err != nil {
		return 0, err
	}
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("similarity score %v out of range [0,1]", score)
	}
	return score, nil
}

// parseScore decodes the response, falling back to extracting the first
// JSON object from mixed output (backends often print progress lines first).
func parseScore(output string) (float64, error) {
	var response commandResponse
	if err := json.Unmarshal([]byte(output), &response); err == nil {
		return response.Score, nil
	}

	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(output[start:end+1]), &response); err == nil {
			return response.Score, nil
		}
	}
	return 0, fmt.Errorf("no JSON score in similarity command output: %q", truncate(output, 200))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
