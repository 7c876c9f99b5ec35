package github

import (
	"errors"
	"fmt"
	"regexp"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

var (
	// ErrInvalidOwner is returned for owner names GitHub would reject.
	ErrInvalidOwner = errors.New("invalid owner name")

	// ErrInvalidRepo is returned for repository names GitHub would reject.
	ErrInvalidRepo = errors.New("invalid repo name")
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if !validOwner.MatchString(owner) {
		return fmt.Errorf("%w %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", ErrInvalidOwner, owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "." || repo == ".." || !validRepo.MatchString(repo) {
		return fmt.Errorf("%w %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", ErrInvalidRepo, repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}
