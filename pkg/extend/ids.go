package extend

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/wolfeidau/humanhash"
)

// IDGenerator produces the identity of a new stage node. Ids must never
// collide within a graph, and must survive merges of independently produced
// packages without a central coordinator.
type IDGenerator interface {
	NodeID(stage Stage, parents []string) (string, error)
}

// RandomIDs generates random UUIDv4 ids. Collisions across independently
// produced packages are statistically impossible, so merged lineages never
// clash. This is the default.
type RandomIDs struct{}

func (RandomIDs) NodeID(Stage, []string) (string, error) {
	return uuid.NewString(), nil
}

// ContentIDs derives the id from the stage content: label, timestamp and
// parent ids. Re-running an unchanged stage over unchanged inputs yields the
// same id, which combined with deterministic encoding makes re-runs produce
// byte-identical manifests. The digest is rendered human-readable.
type ContentIDs struct{}

func (ContentIDs) NodeID(stage Stage, parents []string) (string, error) {
	hash := sha256.New()

	fmt.Fprintf(hash, "%s\n%s\n", stage.Label, stage.CreatedAt)

	parents = append([]string(nil), parents...)
	sort.Strings(parents)

	for _, parent := range parents {
		hash.Write([]byte(parent))
	}

	humanReadableHash, err := humanhash.Humanize(hash.Sum(nil), 4)
	if err != nil {
		return "", fmt.Errorf("could not humanize hash: %w", err)
	}

	return humanReadableHash, nil
}
