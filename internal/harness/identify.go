package harness

import (
	"path/filepath"
	"strings"
)

// Trial directories are named <task-name>__<hash>. idSeparator is the only
// place this convention is encoded.
const idSeparator = "__"

// ArtifactPrefix names the GitHub Actions artifacts that carry harness
// output; the remainder of the artifact name identifies the model.
const ArtifactPrefix = "terminal-bench-results-"

// DeriveIdentifier recovers the (task, trial) identifier pair from a trial's
// enclosing directory name. ok is false when the name does not follow the
// <task>__<hash> convention.
func DeriveIdentifier(dirName string) (taskID, trialID string, ok bool) {
	idx := strings.LastIndex(dirName, idSeparator)
	if idx <= 0 {
		return "", "", false
	}
	return dirName[:idx], dirName, true
}

// OriginModel infers which model a result belongs to from the artifact
// directory it was extracted into. A payload may lack a model field
// entirely, so attribution never consults it.
func OriginModel(path string) string {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if strings.HasPrefix(part, ArtifactPrefix) {
			return strings.TrimPrefix(part, ArtifactPrefix)
		}
	}
	return "unknown"
}
