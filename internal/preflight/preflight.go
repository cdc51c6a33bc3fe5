package preflight

import (
	"context"
	"fmt"

	"hookclip/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCredential("Gemini API key", cfg.APIKeys.GoogleGemini),
		CheckCredential("FPT.AI API key", cfg.APIKeys.FPTAI),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	for _, asset := range []struct{ name, ref string }{
		{"Overlay asset", cfg.AssetPaths.Overlay},
		{"Logo asset", cfg.AssetPaths.Logo},
		{"Font asset", cfg.AssetPaths.Font},
	} {
		results = append(results, CheckAsset(ctx, asset.name, asset.ref))
	}
	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = fmt.Sprintf("%s (found)", status.Path)
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
