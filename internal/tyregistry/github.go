package tyregistry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const githubGraphQLURL = "https://api.github.com/graphql"

// GitHubClient queries GitHub's GraphQL API for repository release and
// activity information. Same *http.Client/baseURL/token shape as a REST
// client would use, but every call is a single POST carrying a GraphQL
// query document — no GraphQL client library appears anywhere in this
// module's dependency pack, so net/http + encoding/json is the idiomatic
// choice here, same as every other registry client in this package.
type GitHubClient struct {
	guarded *guardedClient
	token   string
}

// NewGitHubClient constructs a GitHub client. token is optional but
// strongly recommended; GitHub's unauthenticated GraphQL rate limit is
// far tighter than the authenticated one.
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		guarded: newGuardedClient("github", githubGraphQLURL),
		token:   token,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type repositoryHealthResponse struct {
	Data struct {
		Repository struct {
			IsArchived bool `json:"isArchived"`
			PushedAt   string `json:"pushedAt"`
			Releases   struct {
				Nodes []struct {
					TagName string `json:"tagName"`
				} `json:"nodes"`
			} `json:"releases"`
		} `json:"repository"`
	} `json:"data"`
}

const repositoryHealthQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    isArchived
    pushedAt
    releases(last: 50) {
      nodes { tagName }
    }
  }
}`

// RepositoryHealth reports whether owner/repo is archived and how many
// days have passed since its last push.
func (c *GitHubClient) RepositoryHealth(ctx context.Context, owner, repo string) (archived bool, lastActivityDays int, err error) {
	body, err := c.query(ctx, repositoryHealthQuery, map[string]any{"owner": owner, "name": repo})
	if err != nil {
		return false, 0, err
	}

	var parsed repositoryHealthResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, 0, fmt.Errorf("parse github response: %w", err)
	}

	pushedAt, err := time.Parse(time.RFC3339, parsed.Data.Repository.PushedAt)
	if err != nil {
		return parsed.Data.Repository.IsArchived, 0, nil
	}

	days := int(time.Since(pushedAt).Hours() / 24)
	return parsed.Data.Repository.IsArchived, days, nil
}

// GetReleaseTags returns every release tag name for owner/repo, most
// recent last.
func (c *GitHubClient) GetReleaseTags(ctx context.Context, owner, repo string) ([]string, error) {
	body, err := c.query(ctx, repositoryHealthQuery, map[string]any{"owner": owner, "name": repo})
	if err != nil {
		return nil, err
	}

	var parsed repositoryHealthResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse github response: %w", err)
	}

	tags := make([]string, 0, len(parsed.Data.Repository.Releases.Nodes))
	for _, n := range parsed.Data.Repository.Releases.Nodes {
		tags = append(tags, n.TagName)
	}
	return tags, nil
}

func (c *GitHubClient) query(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.guarded.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	body, err := c.guarded.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("github graphql query: %w", err)
	}
	return body, nil
}
