package llm

import "os"

func writeProvidersFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
