// Package imagecheck implements the background image-update checker:
// reference parsing, registry digest resolution via
// go-containerregistry, local digest resolution via `docker image
// inspect`, and scheduled, bounded-concurrency polling with sqlite
// persistence. Grounded on update_checker.rs.
package imagecheck

import "strings"

const DefaultRegistry = "registry-1.docker.io"

type ParsedRef struct {
	Registry   string
	Repository string
	Tag        string
}

// ParseImageReference splits a Docker image reference into registry,
// repository, and tag components, matching update_checker.rs's
// parse_image_reference byte-for-byte in behavior (digest-pinned
// references are stripped of their @sha256:... suffix before
// splitting, an absent registry defaults to Docker Hub, an absent tag
// defaults to "latest", and a bare single-segment repository is
// prefixed with "library/").
func ParseImageReference(imageRef string) ParsedRef {
	reference := strings.TrimSpace(imageRef)

	if idx := strings.Index(reference, "@sha256:"); idx >= 0 {
		reference = reference[:idx]
	}

	registry := DefaultRegistry
	tag := "latest"

	lastColon := strings.LastIndex(reference, ":")
	lastSlash := strings.LastIndex(reference, "/")
	if lastColon >= 0 && lastColon > lastSlash {
		tag = reference[lastColon+1:]
		reference = reference[:lastColon]
	}

	parts := strings.Split(reference, "/")
	var repository string
	switch {
	case len(parts) >= 2 && (strings.Contains(parts[0], ".") || strings.Contains(parts[0], ":")):
		registry = parts[0]
		repository = strings.Join(parts[1:], "/")
	case len(parts) == 1:
		repository = "library/" + parts[0]
	default:
		repository = reference
	}

	return ParsedRef{Registry: registry, Repository: repository, Tag: tag}
}
