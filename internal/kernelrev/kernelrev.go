// Package kernelrev reports which revision of the vendored kernel a build used.
package kernelrev

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrNotRepository is returned when no git repository encloses the directory.
	ErrNotRepository = errors.New("kernelrev: not inside a git repository")
	// ErrNoCommits is returned for a repository whose HEAD is unborn.
	ErrNoCommits = errors.New("kernelrev: repository has no commits")
)

// Revision identifies the commit checked out in the kernel's repository.
type Revision struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Commit) > 8 {
		return r.Commit[:8]
	}
	return r.Commit
}

func (r Revision) String() string {
	if r.Branch == "" {
		return r.Short()
	}
	return r.Branch + "@" + r.Short()
}

// Read resolves HEAD of the repository containing dir. The kernel is usually a
// subdirectory of the project checkout, so parent directories are searched.
func Read(dir string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, ErrNotRepository
		}
		return Revision{}, fmt.Errorf("open repository at %s: %w", dir, err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Revision{}, ErrNoCommits
		}
		return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	rev := Revision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}
	return rev, nil
}
