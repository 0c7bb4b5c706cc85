// Package gitsync mirrors the local store directory into a git repository so
// every mutation leaves an auditable commit trail.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	httpauth "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-logr/logr"

	"github.com/acrylJonny/metasync/config"
	"github.com/acrylJonny/metasync/faults"
	"github.com/acrylJonny/metasync/store"
)

var _ store.ChangeSync = (*GitChangeSync)(nil)

const (
	defaultRemoteName = "origin"
	defaultBranchName = "main"
)

type GitChangeSync struct {
	baseDir string
	remote  *config.GitRemote
	log     logr.Logger
}

type Option func(*GitChangeSync)

func WithLogger(log logr.Logger) Option {
	return func(s *GitChangeSync) {
		s.log = log
	}
}

func NewGitChangeSync(baseDir string, sync config.GitSync, opts ...Option) *GitChangeSync {
	changeSync := &GitChangeSync{
		baseDir: baseDir,
		remote:  sync.Remote,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(changeSync)
	}
	return changeSync
}

func (s *GitChangeSync) Init(_ context.Context) error {
	repo, err := gogit.PlainOpen(s.baseDir)
	if err != nil {
		if !errors.Is(err, gogit.ErrRepositoryNotExists) {
			return internalError("failed to open git repository", err)
		}
		repo, err = gogit.PlainInit(s.baseDir, false)
		if err != nil {
			return internalError("failed to initialize git repository", err)
		}
	}
	return s.ensureRemote(repo)
}

// Commit stages and commits all pending store changes. A clean worktree is
// not an error. With auto-sync enabled the commit is pushed immediately.
func (s *GitChangeSync) Commit(ctx context.Context, message string) error {
	repo, err := s.open()
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return internalError("failed to open git worktree", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return internalError("failed to inspect git worktree status", err)
	}
	if status.IsClean() {
		return nil
	}

	if err := worktree.AddGlob("."); err != nil {
		return internalError("failed to stage git changes", err)
	}

	commitMessage := strings.TrimSpace(message)
	if commitMessage == "" {
		commitMessage = "metasync: update local store"
	}

	if _, err := worktree.Commit(commitMessage, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "metasync",
			Email: "metasync@local",
			When:  time.Now(),
		},
	}); err != nil {
		return internalError("failed to commit git changes", err)
	}
	s.log.V(1).Info("committed local change", "message", commitMessage)

	if s.hasRemote() && s.remote.AutoSync {
		return s.Push(ctx)
	}
	return nil
}

func (s *GitChangeSync) Push(_ context.Context) error {
	if !s.hasRemote() {
		return validationError("push requires store.git.remote configuration", nil)
	}

	repo, err := s.open()
	if err != nil {
		return err
	}
	if err := s.ensureRemote(repo); err != nil {
		return err
	}

	head, err := repo.Head()
	if err != nil {
		return internalError("failed to resolve git head", err)
	}
	if !head.Name().IsBranch() {
		return validationError("cannot push from detached head", nil)
	}

	auth, err := s.authMethod()
	if err != nil {
		return err
	}

	pushErr := repo.Push(&gogit.PushOptions{
		RemoteName: defaultRemoteName,
		Auth:       auth,
		RefSpecs: []gitcfg.RefSpec{
			gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", head.Name().Short(), s.targetBranch())),
		},
	})
	if pushErr != nil && !errors.Is(pushErr, gogit.NoErrAlreadyUpToDate) {
		return classifyRemoteError("failed to push store changes", pushErr)
	}
	return nil
}

func (s *GitChangeSync) Close() error {
	return nil
}

func (s *GitChangeSync) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(s.baseDir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, notFoundError("local git repository is not initialized")
		}
		return nil, internalError("failed to open git repository", err)
	}
	return repo, nil
}

func (s *GitChangeSync) ensureRemote(repo *gogit.Repository) error {
	if !s.hasRemote() {
		return nil
	}

	_, err := repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: defaultRemoteName,
		URLs: []string{s.remote.URL},
	})
	if err == nil {
		return nil
	}
	if !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return internalError("failed to configure git remote", err)
	}

	cfg, cfgErr := repo.Config()
	if cfgErr != nil {
		return internalError("failed to load git config", cfgErr)
	}
	cfg.Remotes[defaultRemoteName] = &gitcfg.RemoteConfig{
		Name: defaultRemoteName,
		URLs: []string{s.remote.URL},
	}
	if setErr := repo.Storer.SetConfig(cfg); setErr != nil {
		return internalError("failed to update git remote config", setErr)
	}
	return nil
}

func (s *GitChangeSync) authMethod() (transport.AuthMethod, error) {
	if s.remote == nil || s.remote.Auth == nil {
		return nil, nil
	}

	auth := s.remote.Auth
	switch {
	case auth.BasicAuth != nil:
		return &httpauth.BasicAuth{
			Username: auth.BasicAuth.Username,
			Password: auth.BasicAuth.Password,
		}, nil
	case auth.AccessKey != nil:
		return &httpauth.BasicAuth{
			Username: "token",
			Password: auth.AccessKey.Token,
		}, nil
	default:
		return nil, validationError("git remote auth configuration is invalid", nil)
	}
}

func (s *GitChangeSync) hasRemote() bool {
	return s.remote != nil && strings.TrimSpace(s.remote.URL) != ""
}

func (s *GitChangeSync) targetBranch() string {
	if s.remote != nil && strings.TrimSpace(s.remote.Branch) != "" {
		return strings.TrimSpace(s.remote.Branch)
	}
	return defaultBranchName
}

func classifyRemoteError(message string, err error) error {
	lower := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired) ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "permission denied"):
		return faults.NewTypedError(faults.AuthError, message, nil)
	case strings.Contains(lower, "non-fast-forward") ||
		strings.Contains(lower, "fetch first") ||
		strings.Contains(lower, "rejected"):
		return faults.NewTypedError(faults.ConflictError, message, nil)
	case strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "tls") ||
		strings.Contains(lower, "connection") ||
		strings.Contains(lower, "network"):
		return faults.NewTypedError(faults.ConnectivityError, message, nil)
	default:
		return faults.NewTypedError(faults.InternalError, message, nil)
	}
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
