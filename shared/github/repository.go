package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/go-github/v75/github"
)

// ErrNotFound is wrapped by every error caused by a 404 from GitHub.
var ErrNotFound = errors.New("github: not found")

// ContentRepository reads files of one repository at a fixed ref.
type ContentRepository struct {
	client  *github.Client
	owner   string
	gitRepo string
	ref     string
}

// NewContentRepository creates a ContentRepository. An empty ref reads the default branch.
func NewContentRepository(client *github.Client, owner string, gitRepo string, ref string) *ContentRepository {
	return &ContentRepository{
		client:  client,
		owner:   owner,
		gitRepo: gitRepo,
		ref:     ref,
	}
}

// NewClient creates a go-github client. token may be empty for public repositories and
// baseURL may be empty for github.com.
func NewClient(httpClient *http.Client, token string, baseURL string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("github: invalid base URL %q: %w", baseURL, err)
		}
		client.BaseURL = u
	}
	return client, nil
}

// Ref returns the ref files are read at.
func (g *ContentRepository) Ref() string {
	return g.ref
}

// IsAvailable reports whether the repository metadata can be fetched.
func (g *ContentRepository) IsAvailable(ctx context.Context) bool {
	_, _, err := g.client.Repositories.Get(ctx, g.owner, g.gitRepo)
	return err == nil
}

// GetFileContents fetches the contents of a file.
func (g *ContentRepository) GetFileContents(ctx context.Context, filePath string) ([]byte, error) {
	op := fmt.Sprintf("getting file %s at ref %s", filePath, g.ref)
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, filePath, g.contentOptions())
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("github: %s returned a directory", op)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: %s failed to decode content: %w", op, err)
	}

	return []byte(content), nil
}

// ListDirectory returns the names of the files directly inside dir, in the order GitHub
// lists them. Subdirectories are skipped.
func (g *ContentRepository) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	op := fmt.Sprintf("listing directory %s at ref %s", dir, g.ref)
	_, entries, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, dir, g.contentOptions())
	if err != nil {
		return nil, handleGithubError(op, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("github: %s: %s is a file", op, dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.GetType() != "file" {
			continue
		}
		name := e.GetName()
		if name == "" {
			name = path.Base(e.GetPath())
		}
		names = append(names, name)
	}
	return names, nil
}

// GetRepoFullName returns the repository's full name (e.g., "owner/repo").
func (g *ContentRepository) GetRepoFullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.gitRepo)
}

func (g *ContentRepository) contentOptions() *github.RepositoryContentGetOptions {
	if g.ref == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: g.ref}
}

// handleGithubError inspects an error from the go-github client and returns a more informative, structured error.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("github: %s: %w", op, ErrNotFound)
		}
		status := 0
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
		return fmt.Errorf("github: %s failed with status %d: %s", op, status, errResp.Message)
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
