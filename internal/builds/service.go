// Package builds runs one build turn end to end: reconstruct project
// context, acquire a sandbox, drive the agent loop, persist the outcome.
package builds

import (
	"context"
	"fmt"
	"log"

	"github.com/appforge-io/appforge-backend/internal/agent"
	"github.com/appforge-io/appforge-backend/internal/buildctx"
	"github.com/appforge-io/appforge-backend/internal/projects/domain"
	"github.com/appforge-io/appforge-backend/internal/projects/repository"
	"github.com/appforge-io/appforge-backend/internal/prompt"
	"github.com/appforge-io/appforge-backend/internal/sandbox"
)

// FragmentTitle is the fixed title attached to every build artifact.
const FragmentTitle = "Fragment"

// GenericFailureMessage is the user-visible text for a run that ended
// without a usable artifact.
const GenericFailureMessage = "Something went wrong while building your request. Please try again."

// SandboxExpiredMessage is the user-visible text when the environment went
// away mid-run.
const SandboxExpiredMessage = "Your build environment expired. Please send your message again to restart it."

// ContextBuilder reconstructs project state from history.
type ContextBuilder interface {
	Build(ctx context.Context, projectID string) (*buildctx.ProjectContext, error)
}

// SandboxAcquirer returns a live sandbox for a project, resyncing the prior
// snapshot into a fresh one when needed.
type SandboxAcquirer interface {
	Acquire(ctx context.Context, projectID string, snapshot domain.FileSet) (*sandbox.Acquisition, error)
}

// MessageWriter persists the turn's outcome.
type MessageWriter interface {
	CreateMessage(ctx context.Context, projectID string, role domain.MessageRole, msgType domain.MessageType, content string, fragment *repository.FragmentInput) (*domain.Message, error)
}

// SnapshotSource provides the latest delivered file snapshot. Unlike the
// context builder it is not bounded by the history window, so a long-running
// project resyncs correctly even when its last artifact scrolled out of the
// recent turns.
type SnapshotSource interface {
	LatestFragmentFiles(ctx context.Context, projectID string) (domain.FileSet, error)
}

// AgentRunner drives one bounded agent run.
type AgentRunner interface {
	Run(ctx context.Context, instructions, task string, seed domain.FileSet, handle sandbox.Handle) (*agent.Outcome, error)
}

type Service struct {
	contexts         ContextBuilder
	sandboxes        SandboxAcquirer
	runner           AgentRunner
	messages         MessageWriter
	snapshots        SnapshotSource
	baseInstructions string
	previewPort      int
}

func NewService(contexts ContextBuilder, sandboxes SandboxAcquirer, runner AgentRunner, messages MessageWriter, snapshots SnapshotSource, previewPort int) *Service {
	return &Service{
		contexts:         contexts,
		sandboxes:        sandboxes,
		runner:           runner,
		messages:         messages,
		snapshots:        snapshots,
		baseInstructions: prompt.BaseInstructions,
		previewPort:      previewPort,
	}
}

// HandleBuild processes one build event. Every path that does not reach the
// success artifact ends in exactly one ERROR turn, except history-fetch
// failures and unclassified errors, which propagate so the surrounding
// worker can apply its own retry policy.
func (s *Service) HandleBuild(ctx context.Context, projectID, value string) error {
	pctx, err := s.contexts.Build(ctx, projectID)
	if err != nil {
		// Not classified and not retried here.
		return fmt.Errorf("build context: %w", err)
	}

	snapshot, err := s.snapshots.LatestFragmentFiles(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}

	acq, err := s.sandboxes.Acquire(ctx, projectID, snapshot)
	if err != nil {
		return s.finishWithError(ctx, projectID, err)
	}

	instructions := prompt.Compose(s.baseInstructions, pctx)

	var seed domain.FileSet
	if pctx.HasContext {
		seed = pctx.CurrentFiles
	}

	outcome, err := s.runner.Run(ctx, instructions, value, seed, acq.Handle)
	if err != nil {
		return s.finishWithError(ctx, projectID, err)
	}

	if outcome.Failed() {
		log.Printf("build for project %s failed: phase=%s files=%d", projectID, outcome.Phase, len(outcome.Files))
		_, err := s.messages.CreateMessage(ctx, projectID, domain.RoleAssistant, domain.TypeError, GenericFailureMessage, nil)
		return err
	}

	previewURL := "https://" + acq.Handle.PublicHost(s.previewPort)
	_, err = s.messages.CreateMessage(ctx, projectID, domain.RoleAssistant, domain.TypeResult, outcome.Summary, &repository.FragmentInput{
		Title:      FragmentTitle,
		SandboxURL: previewURL,
		Files:      outcome.Files,
	})
	return err
}

// finishWithError classifies a run-level failure once: connectivity failures
// short-circuit to the user-visible expired turn (no preview fetch, no
// artifact); anything else is re-raised untouched.
func (s *Service) finishWithError(ctx context.Context, projectID string, cause error) error {
	if agent.IsConnectivityError(cause) {
		log.Printf("build for project %s hit a connectivity failure: %v", projectID, cause)
		_, err := s.messages.CreateMessage(ctx, projectID, domain.RoleAssistant, domain.TypeError, SandboxExpiredMessage, nil)
		return err
	}
	return cause
}
