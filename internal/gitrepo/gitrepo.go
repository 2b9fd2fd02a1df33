// Package gitrepo is the version-control gateway the approval workflow
// commits through. It wraps go-git; no git binary is invoked.
package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Gateway is the contract the approval workflow depends on.
type Gateway interface {
	// IsTracked reports whether the file at path is tracked by version
	// control. It fails if the path is outside any repository.
	IsTracked(path string) (bool, error)

	// Stage marks the file for inclusion in the next commit. Idempotent.
	Stage(path string) error

	// Commit creates a commit containing the staged changes and returns
	// its hash. It fails when there is nothing staged.
	Commit(path, message string) (string, error)
}

// Signature identifies the commit author.
type Signature struct {
	Name  string
	Email string
}

// Service is the go-git backed Gateway. Worktree mutations for the same
// repository are serialized through a per-root mutex.
type Service struct {
	sig Signature

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// New creates a Service committing under the given author signature.
func New(sig Signature) *Service {
	if sig.Name == "" {
		sig.Name = "gitdraft"
	}
	if sig.Email == "" {
		sig.Email = "gitdraft@localhost"
	}
	return &Service{
		sig:   sig,
		locks: make(map[string]*sync.Mutex),
	}
}

// IsTracked reports whether path is in the repository index. Files staged
// but not yet committed count as tracked.
func (s *Service) IsTracked(path string) (bool, error) {
	repo, rel, err := s.open(path)
	if err != nil {
		return false, err
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return false, fmt.Errorf("read index: %w", err)
	}
	if _, err := idx.Entry(rel); err != nil {
		if errors.Is(err, index.ErrEntryNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup index entry: %w", err)
	}
	return true, nil
}

// Stage adds the file to the index.
func (s *Service) Stage(path string) error {
	repo, rel, err := s.open(path)
	if err != nil {
		return err
	}

	lock := s.repoLock(repoRoot(repo))
	lock.Lock()
	defer lock.Unlock()

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if _, err := worktree.Add(rel); err != nil {
		return fmt.Errorf("git add %s: %w", rel, err)
	}
	return nil
}

// Commit commits the staged changes with the given message and returns
// the new commit hash. go-git rejects empty commits, so committing with
// nothing staged fails.
func (s *Service) Commit(path, message string) (string, error) {
	repo, _, err := s.open(path)
	if err != nil {
		return "", err
	}

	lock := s.repoLock(repoRoot(repo))
	lock.Lock()
	defer lock.Unlock()

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.sig.Name,
			Email: s.sig.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}
	return hash.String(), nil
}

// open locates the repository containing path and returns it together
// with the slash-separated worktree-relative path of the file. The file
// itself (and intermediate directories) need not exist yet; detection
// starts from the nearest existing ancestor.
func (s *Service) open(path string) (*git.Repository, string, error) {
	repo, err := git.PlainOpenWithOptions(nearestExistingDir(filepath.Dir(path)), &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("path is outside any git repository: %s: %w", path, err)
	}

	root := repoRoot(repo)
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, "", fmt.Errorf("path is outside the repository worktree: %s", path)
	}
	return repo, filepath.ToSlash(rel), nil
}

func nearestExistingDir(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func repoRoot(repo *git.Repository) string {
	worktree, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return worktree.Filesystem.Root()
}

func (s *Service) repoLock(root string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[root]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[root] = lock
	}
	return lock
}
