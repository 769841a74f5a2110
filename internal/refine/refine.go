// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Refiner turns one oracle round trip into a sanitized patch.
type Refiner struct {
	Oracle Oracle
	Log    *zap.Logger
}

// Refine sends the draft and snippets to the oracle and returns the
// sanitized patch with the raw reply. An empty patch with a nil error means
// the reply held nothing usable. A non-nil error means the oracle could not
// be reached or the request could not be built; the call is not retried.
func (r *Refiner) Refine(ctx context.Context, draft types.Record, s Snippets) (types.Patch, string, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	system, err := SystemPrompt()
	if err != nil {
		return types.Patch{}, "", err
	}
	user, err := UserPayload(draft, s)
	if err != nil {
		return types.Patch{}, "", err
	}

	raw, err := r.Oracle.Complete(ctx, []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	})
	if err != nil {
		return types.Patch{}, "", fmt.Errorf("refining %s: %w", draft.Paper.FilePath, err)
	}

	obj, ok := ParseJSONObject(raw)
	if !ok {
		log.Debug("oracle reply is not a JSON object", zap.String("file", draft.Paper.FilePath), zap.String("raw", raw))
		return types.Patch{}, raw, nil
	}
	patch := Sanitize(obj)
	log.Debug("oracle patch",
		zap.String("file", draft.Paper.FilePath),
		zap.Int("paper_fields", len(patch.Paper)),
		zap.Int("nanomaterial_fields", len(patch.Nanomaterial)),
	)
	return patch, raw, nil
}
