package index

import "errors"

// ErrNoIndex is returned by operations that need a persisted index when
// none exists under the repository root. Callers should suggest running
// a build first.
var ErrNoIndex = errors.New("no index found: run `repomap build` first")
