package telemetry

import (
	"fmt"
	"os"

	"github.com/petasbytes/go-astra/internal/fsops"
)

// PersistPrompt writes prompt to <ArtifactsDir>/prompts/<turnID>.txt when
// prompt persistence is enabled. Failures are reported on stderr only.
func PersistPrompt(turnID, prompt string) {
	if !PersistPromptsEnabled() || turnID == "" {
		return
	}
	dir := ArtifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}
	if err := fsops.WriteFile(dir, "prompts/"+turnID+".txt", prompt); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: persist prompt: %v\n", err)
	}
}
