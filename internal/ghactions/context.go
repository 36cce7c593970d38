package ghactions

import (
	"os"
	"strconv"
)

// Context is the GitHub Actions trigger context, read from the standard
// GITHUB_* environment variables. Fields are empty/nil outside of CI.
type Context struct {
	RunID     *int64
	Workflow  string
	SHA       string
	Ref       string
	Actor     string
	EventName string
}

func FromEnv() Context {
	return Context{
		RunID:     parseInt64(os.Getenv("GITHUB_RUN_ID")),
		Workflow:  os.Getenv("GITHUB_WORKFLOW"),
		SHA:       os.Getenv("GITHUB_SHA"),
		Ref:       os.Getenv("GITHUB_REF"),
		Actor:     os.Getenv("GITHUB_ACTOR"),
		EventName: os.Getenv("GITHUB_EVENT_NAME"),
	}
}

func parseInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
