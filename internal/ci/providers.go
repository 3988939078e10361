package ci

// providerSpec couples a provider's detection variable with its extraction
// logic. Detection is first-match in declaration order.
type providerSpec struct {
	name    string
	flagVar string
	extract func(getenv func(string) string) (*CI, *Git)
}

func detectProvider(getenv func(string) string) *providerSpec {
	for i := range providers {
		if getenv(providers[i].flagVar) != "" {
			return &providers[i]
		}
	}
	return nil
}

var providers = []providerSpec{
	{
		name:    "github",
		flagVar: "GITHUB_ACTIONS",
		extract: func(getenv func(string) string) (*CI, *Git) {
			serverURL := getenv("GITHUB_SERVER_URL")
			if serverURL == "" {
				serverURL = "https://github.com"
			}
			repo := getenv("GITHUB_REPOSITORY")
			pipelineURL := ""
			if repo != "" && getenv("GITHUB_RUN_ID") != "" {
				pipelineURL = serverURL + "/" + repo + "/actions/runs/" + getenv("GITHUB_RUN_ID")
			}
			repoURL := ""
			if repo != "" {
				repoURL = serverURL + "/" + repo + ".git"
			}
			return &CI{
					Provider: &Provider{Name: "github"},
					Pipeline: &Pipeline{
						ID:     getenv("GITHUB_RUN_ID"),
						Name:   getenv("GITHUB_WORKFLOW"),
						Number: getenv("GITHUB_RUN_NUMBER"),
						URL:    pipelineURL,
					},
					Job:           &Job{Name: getenv("GITHUB_JOB"), URL: pipelineURL},
					WorkspacePath: getenv("GITHUB_WORKSPACE"),
				}, &Git{
					RepositoryURL: repoURL,
					SHA:           getenv("GITHUB_SHA"),
					Branch:        firstNonEmpty(getenv("GITHUB_HEAD_REF"), getenv("GITHUB_REF")),
				}
		},
	},
	{
		name:    "gitlab",
		flagVar: "GITLAB_CI",
		extract: func(getenv func(string) string) (*CI, *Git) {
			return &CI{
					Provider: &Provider{Name: "gitlab"},
					Pipeline: &Pipeline{
						ID:     getenv("CI_PIPELINE_ID"),
						Name:   getenv("CI_PROJECT_PATH"),
						Number: getenv("CI_PIPELINE_IID"),
						URL:    getenv("CI_PIPELINE_URL"),
					},
					Job:           &Job{Name: getenv("CI_JOB_NAME"), URL: getenv("CI_JOB_URL")},
					Stage:         &Stage{Name: getenv("CI_JOB_STAGE")},
					WorkspacePath: getenv("CI_PROJECT_DIR"),
				}, &Git{
					RepositoryURL: getenv("CI_REPOSITORY_URL"),
					SHA:           getenv("CI_COMMIT_SHA"),
					Branch:        getenv("CI_COMMIT_REF_NAME"),
					Tag:           getenv("CI_COMMIT_TAG"),
					Commit: &Commit{
						Message: getenv("CI_COMMIT_MESSAGE"),
						Author: &Person{
							Name:  getenv("CI_COMMIT_AUTHOR"),
							Date:  getenv("CI_COMMIT_TIMESTAMP"),
						},
					},
				}
		},
	},
	{
		name:    "circleci",
		flagVar: "CIRCLECI",
		extract: func(getenv func(string) string) (*CI, *Git) {
			return &CI{
					Provider: &Provider{Name: "circleci"},
					Pipeline: &Pipeline{
						Name:   getenv("CIRCLE_PROJECT_REPONAME"),
						Number: getenv("CIRCLE_BUILD_NUM"),
						URL:    getenv("CIRCLE_BUILD_URL"),
					},
					Job:           &Job{Name: getenv("CIRCLE_JOB"), URL: getenv("CIRCLE_BUILD_URL")},
					WorkspacePath: getenv("CIRCLE_WORKING_DIRECTORY"),
				}, &Git{
					RepositoryURL: getenv("CIRCLE_REPOSITORY_URL"),
					SHA:           getenv("CIRCLE_SHA1"),
					Branch:        getenv("CIRCLE_BRANCH"),
					Tag:           getenv("CIRCLE_TAG"),
				}
		},
	},
	{
		name:    "jenkins",
		flagVar: "JENKINS_URL",
		extract: func(getenv func(string) string) (*CI, *Git) {
			return &CI{
					Provider: &Provider{Name: "jenkins"},
					Pipeline: &Pipeline{
						ID:     getenv("BUILD_TAG"),
						Name:   getenv("JOB_NAME"),
						Number: getenv("BUILD_NUMBER"),
						URL:    getenv("BUILD_URL"),
					},
					WorkspacePath: getenv("WORKSPACE"),
				}, &Git{
					RepositoryURL: getenv("GIT_URL"),
					SHA:           getenv("GIT_COMMIT"),
					Branch:        getenv("GIT_BRANCH"),
				}
		},
	},
	{
		name:    "travis",
		flagVar: "TRAVIS",
		extract: func(getenv func(string) string) (*CI, *Git) {
			return &CI{
					Provider: &Provider{Name: "travisci"},
					Pipeline: &Pipeline{
						ID:     getenv("TRAVIS_BUILD_ID"),
						Name:   getenv("TRAVIS_REPO_SLUG"),
						Number: getenv("TRAVIS_BUILD_NUMBER"),
						URL:    getenv("TRAVIS_BUILD_WEB_URL"),
					},
					Job:           &Job{URL: getenv("TRAVIS_JOB_WEB_URL")},
					WorkspacePath: getenv("TRAVIS_BUILD_DIR"),
				}, &Git{
					RepositoryURL: repoSlugURL(getenv("TRAVIS_REPO_SLUG")),
					SHA:           getenv("TRAVIS_COMMIT"),
					Branch:        firstNonEmpty(getenv("TRAVIS_PULL_REQUEST_BRANCH"), getenv("TRAVIS_BRANCH")),
					Tag:           getenv("TRAVIS_TAG"),
					Commit:        &Commit{Message: getenv("TRAVIS_COMMIT_MESSAGE")},
				}
		},
	},
	{
		name:    "buildkite",
		flagVar: "BUILDKITE",
		extract: func(getenv func(string) string) (*CI, *Git) {
			return &CI{
					Provider: &Provider{Name: "buildkite"},
					Pipeline: &Pipeline{
						ID:     getenv("BUILDKITE_BUILD_ID"),
						Name:   getenv("BUILDKITE_PIPELINE_SLUG"),
						Number: getenv("BUILDKITE_BUILD_NUMBER"),
						URL:    getenv("BUILDKITE_BUILD_URL"),
					},
					WorkspacePath: getenv("BUILDKITE_BUILD_CHECKOUT_PATH"),
				}, &Git{
					RepositoryURL: getenv("BUILDKITE_REPO"),
					SHA:           getenv("BUILDKITE_COMMIT"),
					Branch:        getenv("BUILDKITE_BRANCH"),
					Tag:           getenv("BUILDKITE_TAG"),
					Commit: &Commit{
						Message: getenv("BUILDKITE_MESSAGE"),
						Author: &Person{
							Name:  getenv("BUILDKITE_BUILD_AUTHOR"),
							Email: getenv("BUILDKITE_BUILD_AUTHOR_EMAIL"),
						},
					},
				}
		},
	},
	{
		name:    "azure",
		flagVar: "TF_BUILD",
		extract: func(getenv func(string) string) (*CI, *Git) {
			pipelineURL := ""
			if getenv("SYSTEM_TEAMFOUNDATIONSERVERURI") != "" && getenv("SYSTEM_TEAMPROJECTID") != "" && getenv("BUILD_BUILDID") != "" {
				pipelineURL = getenv("SYSTEM_TEAMFOUNDATIONSERVERURI") + getenv("SYSTEM_TEAMPROJECTID") + "/_build/results?buildId=" + getenv("BUILD_BUILDID")
			}
			return &CI{
					Provider: &Provider{Name: "azurepipelines"},
					Pipeline: &Pipeline{
						ID:     getenv("BUILD_BUILDID"),
						Name:   getenv("BUILD_DEFINITIONNAME"),
						Number: getenv("BUILD_BUILDNUMBER"),
						URL:    pipelineURL,
					},
					Stage:         &Stage{Name: getenv("SYSTEM_STAGEDISPLAYNAME")},
					WorkspacePath: getenv("BUILD_SOURCESDIRECTORY"),
				}, &Git{
					RepositoryURL: getenv("BUILD_REPOSITORY_URI"),
					SHA:           getenv("BUILD_SOURCEVERSION"),
					Branch:        firstNonEmpty(getenv("SYSTEM_PULLREQUEST_SOURCEBRANCH"), getenv("BUILD_SOURCEBRANCH")),
					Commit:        &Commit{Message: getenv("BUILD_SOURCEVERSIONMESSAGE")},
				}
		},
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func repoSlugURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "https://github.com/" + slug + ".git"
}
