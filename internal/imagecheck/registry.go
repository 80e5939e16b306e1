// Remote and local digest resolution. The remote side uses
// go-containerregistry's remote.Head against the parsed reference
// instead of the reference implementation's hand-rolled
// WWW-Authenticate bearer-token flow — go-containerregistry's
// transport already implements the OCI distribution auth handshake,
// so this is strictly less code for the same contract (see
// SPEC_FULL.md §B).
package imagecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cfilipov/dockge/internal/telemetry"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const registryTimeout = 15 * time.Second

// FetchRemoteDigest resolves the content digest for parsed's tag on
// its registry, returning "" when resolution fails (network error,
// nonexistent tag, auth failure) — callers treat a missing digest as
// "unknown", not as an update.
func FetchRemoteDigest(ctx context.Context, parsed ParsedRef) string {
	refStr := fmt.Sprintf("%s/%s:%s", parsed.Registry, parsed.Repository, parsed.Tag)

	ctx, span := telemetry.Tracer().Start(ctx, "imagecheck.fetch_remote_digest", attribute.String("image.ref", refStr))
	defer span.End()

	ref, err := name.ParseReference(refStr, name.WeakValidation)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, registryTimeout)
	defer cancel()

	desc, err := remote.Head(ref, remote.WithContext(ctx), remote.WithAuthFromKeychain(authn.DefaultKeychain))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ""
	}
	return desc.Digest.String()
}

// FetchLocalDigest shells out to `docker image inspect` and extracts
// the digest half of the image's first RepoDigests entry, matching
// update_checker.rs's fetch_local_digest.
func FetchLocalDigest(ctx context.Context, imageRef string) string {
	cmd := exec.CommandContext(ctx, "docker", "image", "inspect", "--format", "json", imageRef)
	out, err := cmd.Output()
	if err != nil || len(out) == 0 {
		return ""
	}

	var arr []struct {
		RepoDigests []string `json:"RepoDigests"`
	}
	trimmed := strings.TrimSpace(string(out))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil || len(arr) == 0 {
			return ""
		}
	} else {
		var single struct {
			RepoDigests []string `json:"RepoDigests"`
		}
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return ""
		}
		arr = []struct {
			RepoDigests []string `json:"RepoDigests"`
		}{single}
	}

	if len(arr[0].RepoDigests) == 0 {
		return ""
	}
	parts := strings.SplitN(arr[0].RepoDigests[0], "@", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
