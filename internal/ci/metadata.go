// Package ci discovers CI-environment and git metadata for trigger requests.
//
// Discovery is env-only: the supported providers each expose well-known
// environment variables, and users can override or supplement any git field
// through the DD_GIT_* / DD_CI_* variables. Empty-string values are dropped
// before emission.
package ci

import (
	"os"
	"sync"
)

// Metadata is attached to every trigger request.
type Metadata struct {
	CI         *CI    `json:"ci,omitempty"`
	Git        *Git   `json:"git,omitempty"`
	TriggerApp string `json:"trigger_app"`
}

type CI struct {
	Provider      *Provider `json:"provider,omitempty"`
	Pipeline      *Pipeline `json:"pipeline,omitempty"`
	Job           *Job      `json:"job,omitempty"`
	Stage         *Stage    `json:"stage,omitempty"`
	WorkspacePath string    `json:"workspace_path,omitempty"`
}

type Provider struct {
	Name string `json:"name,omitempty"`
}

type Pipeline struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Number string `json:"number,omitempty"`
	URL    string `json:"url,omitempty"`
}

type Job struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type Stage struct {
	Name string `json:"name,omitempty"`
}

type Git struct {
	RepositoryURL string  `json:"repository_url,omitempty"`
	SHA           string  `json:"sha,omitempty"`
	Branch        string  `json:"branch,omitempty"`
	Tag           string  `json:"tag,omitempty"`
	Commit        *Commit `json:"commit,omitempty"`
}

type Commit struct {
	Message   string  `json:"message,omitempty"`
	Author    *Person `json:"author,omitempty"`
	Committer *Person `json:"committer,omitempty"`
}

type Person struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Date  string `json:"date,omitempty"`
}

// DefaultTriggerApp identifies the integration surface in trigger metadata
// unless a caller overrides it.
const DefaultTriggerApp = "npm_package"

var (
	triggerAppMu sync.RWMutex
	triggerApp   = DefaultTriggerApp
)

// SetTriggerApp overrides the trigger_app tag for subsequent trigger
// requests. Callers set it at most once, before the first run.
func SetTriggerApp(app string) {
	if app == "" {
		return
	}
	triggerAppMu.Lock()
	triggerApp = app
	triggerAppMu.Unlock()
}

// TriggerApp returns the current trigger_app tag.
func TriggerApp() string {
	triggerAppMu.RLock()
	defer triggerAppMu.RUnlock()
	return triggerApp
}

// Collect assembles trigger metadata from the process environment: the
// detected CI provider's fields first, then the DD_* user overrides, then
// ref normalisation.
func Collect() *Metadata {
	return collect(os.Getenv)
}

func collect(getenv func(string) string) *Metadata {
	meta := &Metadata{TriggerApp: TriggerApp()}

	if provider := detectProvider(getenv); provider != nil {
		meta.CI, meta.Git = provider.extract(getenv)
	}

	applyUserOverrides(meta, getenv)
	normalizeGitRefs(meta, getenv("DD_GIT_TAG") != "")
	prune(meta)
	return meta
}

// prune drops empty sub-objects so the serialized metadata never carries
// hollow structures.
func prune(meta *Metadata) {
	if meta.CI != nil {
		if meta.CI.Provider != nil && *meta.CI.Provider == (Provider{}) {
			meta.CI.Provider = nil
		}
		if meta.CI.Pipeline != nil && *meta.CI.Pipeline == (Pipeline{}) {
			meta.CI.Pipeline = nil
		}
		if meta.CI.Job != nil && *meta.CI.Job == (Job{}) {
			meta.CI.Job = nil
		}
		if meta.CI.Stage != nil && *meta.CI.Stage == (Stage{}) {
			meta.CI.Stage = nil
		}
		if *meta.CI == (CI{}) {
			meta.CI = nil
		}
	}
	if meta.Git != nil {
		if meta.Git.Commit != nil {
			if meta.Git.Commit.Author != nil && *meta.Git.Commit.Author == (Person{}) {
				meta.Git.Commit.Author = nil
			}
			if meta.Git.Commit.Committer != nil && *meta.Git.Commit.Committer == (Person{}) {
				meta.Git.Commit.Committer = nil
			}
			if *meta.Git.Commit == (Commit{}) {
				meta.Git.Commit = nil
			}
		}
		if *meta.Git == (Git{}) {
			meta.Git = nil
		}
	}
}
