//go:build integration

package github

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLatestTag_Integration(t *testing.T) {
	client := NewClient(WithToken(os.Getenv("GITHUB_TOKEN")))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		owner   string
		repo    string
		wantErr bool
	}{
		{"asg017/sqlite-vec", "asg017", "sqlite-vec", false},
		{"nonexistent", "nonexistent-owner-12345", "nonexistent-repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := client.LatestTag(ctx, tt.owner, tt.repo)
			if (err != nil) != tt.wantErr {
				t.Errorf("LatestTag(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
			}
			if err == nil && tag == "" {
				t.Error("LatestTag() returned empty tag")
			}
		})
	}
}
