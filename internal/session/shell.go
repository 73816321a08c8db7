package session

import (
	"fmt"
	"os"
)

// shellCandidates are tried in order when $SHELL is unusable.
var shellCandidates = []string{"/bin/bash", "/bin/zsh", "/bin/sh"}

// DetectShell picks the user's shell: $SHELL when it points at an
// executable, then the fixed candidate list.
func DetectShell() (string, error) {
	candidates := append([]string{os.Getenv("SHELL")}, shellCandidates...)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no usable shell: checked $SHELL and %v", shellCandidates)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
