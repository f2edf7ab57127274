// Package agent drives the bounded, iterative tool-using dialogue between
// the model and one sandbox until the model signals completion or the
// iteration budget runs out.
package agent

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/appforge-io/appforge-backend/internal/llm"
	"github.com/appforge-io/appforge-backend/internal/projects/domain"
	"github.com/appforge-io/appforge-backend/internal/sandbox"
)

// TaskSummarySentinel is the marker the model is instructed to emit inside
// its final message. Seeing it in assistant text is the only way a run
// completes successfully.
const TaskSummarySentinel = "<task_summary>"

// DefaultMaxIterations is the hard ceiling on loop steps, the safety valve
// against a model that never emits the sentinel.
const DefaultMaxIterations = 15

// Phase is the loop's terminal state.
type Phase string

const (
	PhaseComplete  Phase = "complete"
	PhaseExhausted Phase = "exhausted"
)

// Outcome is the result of one run.
type Outcome struct {
	Phase      Phase
	Summary    string
	Files      domain.FileSet
	Iterations int
}

// Failed reports whether the run produced no usable artifact: no summary was
// ever stored, or the accumulator ended empty. The two conditions are
// independent; a model that talks without producing files still fails.
func (o *Outcome) Failed() bool {
	return o.Summary == "" || len(o.Files) == 0
}

// Runner executes agent runs. Safe to share across runs; all per-run state
// lives in the RunState created inside Run.
type Runner struct {
	client        llm.Client
	maxIterations int
	limiter       *rate.Limiter
}

// NewRunner builds a Runner. requestsPerMinute caps the LLM call rate; 0
// disables limiting.
func NewRunner(client llm.Client, maxIterations, requestsPerMinute int) *Runner {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return &Runner{client: client, maxIterations: maxIterations, limiter: limiter}
}

// Run drives one task to a terminal phase. The accumulator is seeded from
// the prior snapshot when one exists. Tool failures never abort the loop;
// LLM failures propagate to the caller, which owns their classification.
func (r *Runner) Run(ctx context.Context, instructions, task string, seed domain.FileSet, handle sandbox.Handle) (*Outcome, error) {
	state := NewRunState()
	state.Seed(seed)
	tools := NewToolset(handle, state)

	transcript := []llm.Message{{Role: llm.RoleUser, Content: task}}

	iterations := 0
	for iterations < r.maxIterations {
		iterations++

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := r.client.Complete(ctx, llm.Request{
			Instructions: instructions,
			Messages:     transcript,
			Tools:        tools.Definitions(),
		})
		if err != nil {
			return nil, fmt.Errorf("llm completion: %w", err)
		}

		if resp.Text != "" {
			transcript = append(transcript, llm.Message{Role: llm.RoleAssistant, Content: resp.Text})
		}

		// Completion protocol: the latest assistant text is inspected after
		// every response; the full text becomes the run summary.
		if summary, ok := ExtractSummary(resp.Text); ok {
			state.SetSummary(summary)
			break
		}

		for _, call := range resp.ToolCalls {
			result, isErr := tools.Dispatch(ctx, call)
			transcript = append(transcript, llm.Message{Role: llm.RoleTool, Content: result, IsError: isErr})
		}
	}

	phase := PhaseExhausted
	if state.Summary() != "" {
		phase = PhaseComplete
	}

	return &Outcome{
		Phase:      phase,
		Summary:    state.Summary(),
		Files:      state.Files(),
		Iterations: iterations,
	}, nil
}

// ExtractSummary returns the full assistant text as the run summary when it
// contains the completion sentinel. Substring matching is the documented
// protocol; swapping in a structured completion tool only requires replacing
// this function.
func ExtractSummary(text string) (string, bool) {
	if strings.Contains(text, TaskSummarySentinel) {
		return text, true
	}
	return "", false
}
