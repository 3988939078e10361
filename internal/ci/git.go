package ci

import "strings"

// applyUserOverrides layers the DD_GIT_* / DD_CI_* variables over whatever
// the provider extraction produced. Empty-string values are dropped: they
// never overwrite a provider-derived value.
func applyUserOverrides(meta *Metadata, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if meta.Git == nil {
		meta.Git = &Git{}
	}
	set(&meta.Git.RepositoryURL, "DD_GIT_REPOSITORY_URL")
	set(&meta.Git.SHA, "DD_GIT_COMMIT_SHA")
	set(&meta.Git.Branch, "DD_GIT_BRANCH")
	set(&meta.Git.Tag, "DD_GIT_TAG")

	hasCommitEnv := false
	for _, key := range []string{
		"DD_GIT_COMMIT_MESSAGE",
		"DD_GIT_COMMIT_AUTHOR_NAME", "DD_GIT_COMMIT_AUTHOR_EMAIL", "DD_GIT_COMMIT_AUTHOR_DATE",
		"DD_GIT_COMMIT_COMMITTER_NAME", "DD_GIT_COMMIT_COMMITTER_EMAIL", "DD_GIT_COMMIT_COMMITTER_DATE",
	} {
		if getenv(key) != "" {
			hasCommitEnv = true
			break
		}
	}
	if hasCommitEnv {
		if meta.Git.Commit == nil {
			meta.Git.Commit = &Commit{}
		}
		set(&meta.Git.Commit.Message, "DD_GIT_COMMIT_MESSAGE")
		if getenv("DD_GIT_COMMIT_AUTHOR_NAME") != "" || getenv("DD_GIT_COMMIT_AUTHOR_EMAIL") != "" || getenv("DD_GIT_COMMIT_AUTHOR_DATE") != "" {
			if meta.Git.Commit.Author == nil {
				meta.Git.Commit.Author = &Person{}
			}
			set(&meta.Git.Commit.Author.Name, "DD_GIT_COMMIT_AUTHOR_NAME")
			set(&meta.Git.Commit.Author.Email, "DD_GIT_COMMIT_AUTHOR_EMAIL")
			set(&meta.Git.Commit.Author.Date, "DD_GIT_COMMIT_AUTHOR_DATE")
		}
		if getenv("DD_GIT_COMMIT_COMMITTER_NAME") != "" || getenv("DD_GIT_COMMIT_COMMITTER_EMAIL") != "" || getenv("DD_GIT_COMMIT_COMMITTER_DATE") != "" {
			if meta.Git.Commit.Committer == nil {
				meta.Git.Commit.Committer = &Person{}
			}
			set(&meta.Git.Commit.Committer.Name, "DD_GIT_COMMIT_COMMITTER_NAME")
			set(&meta.Git.Commit.Committer.Email, "DD_GIT_COMMIT_COMMITTER_EMAIL")
			set(&meta.Git.Commit.Committer.Date, "DD_GIT_COMMIT_COMMITTER_DATE")
		}
	}

	if meta.CI == nil {
		meta.CI = &CI{}
	}
	if getenv("DD_CI_PROVIDER_NAME") != "" {
		if meta.CI.Provider == nil {
			meta.CI.Provider = &Provider{}
		}
		set(&meta.CI.Provider.Name, "DD_CI_PROVIDER_NAME")
	}
	if getenv("DD_CI_PIPELINE_ID") != "" || getenv("DD_CI_PIPELINE_NAME") != "" || getenv("DD_CI_PIPELINE_NUMBER") != "" || getenv("DD_CI_PIPELINE_URL") != "" {
		if meta.CI.Pipeline == nil {
			meta.CI.Pipeline = &Pipeline{}
		}
		set(&meta.CI.Pipeline.ID, "DD_CI_PIPELINE_ID")
		set(&meta.CI.Pipeline.Name, "DD_CI_PIPELINE_NAME")
		set(&meta.CI.Pipeline.Number, "DD_CI_PIPELINE_NUMBER")
		set(&meta.CI.Pipeline.URL, "DD_CI_PIPELINE_URL")
	}
	if getenv("DD_CI_JOB_NAME") != "" || getenv("DD_CI_JOB_URL") != "" {
		if meta.CI.Job == nil {
			meta.CI.Job = &Job{}
		}
		set(&meta.CI.Job.Name, "DD_CI_JOB_NAME")
		set(&meta.CI.Job.URL, "DD_CI_JOB_URL")
	}
	if getenv("DD_CI_STAGE_NAME") != "" {
		if meta.CI.Stage == nil {
			meta.CI.Stage = &Stage{}
		}
		set(&meta.CI.Stage.Name, "DD_CI_STAGE_NAME")
	}
	set(&meta.CI.WorkspacePath, "DD_CI_WORKSPACE_PATH")
}

// NormalizeRef strips the usual git ref decorations so that
// "refs/heads/main" and "origin/main" both normalise to "main".
func NormalizeRef(ref string) string {
	if ref == "" {
		return ""
	}
	for _, prefix := range []string{"refs/heads/", "refs/", "origin/", "tags/"} {
		ref = strings.ReplaceAll(ref, prefix, "")
	}
	return ref
}

// isTagRef reports whether a ref names a tag: refs/tags/, origin/tags/ and
// refs/heads/tags/ all count.
func isTagRef(ref string) bool {
	return strings.Contains(ref, "tags/")
}

// normalizeGitRefs finalises branch/tag: a branch that is really a tag ref
// relocates to the tag field, and an explicit DD_GIT_TAG clears the branch
// unconditionally.
func normalizeGitRefs(meta *Metadata, explicitTag bool) {
	if meta.Git == nil {
		return
	}
	if explicitTag {
		meta.Git.Tag = NormalizeRef(meta.Git.Tag)
		meta.Git.Branch = ""
		return
	}
	if meta.Git.Tag != "" {
		meta.Git.Tag = NormalizeRef(meta.Git.Tag)
		meta.Git.Branch = ""
		return
	}
	if meta.Git.Branch == "" {
		return
	}
	if isTagRef(meta.Git.Branch) {
		meta.Git.Tag = NormalizeRef(meta.Git.Branch)
		meta.Git.Branch = ""
		return
	}
	meta.Git.Branch = NormalizeRef(meta.Git.Branch)
}
