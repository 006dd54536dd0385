package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/session"
	"tableflip.dev/pricematrix/pkg/tier"
)

// Editor runs one-shot edit sessions for non-interactive surfaces (CLI and
// MCP), so they get the same cascade and input rules as the editor.
type Editor struct {
	Backend session.Backend
	Options []session.Option
}

// SetPrice edits one cell and saves. Setting a lite price also sets the
// derived standard and unlimited prices of the row.
func (e *Editor) SetPrice(ctx context.Context, row, tierName, value string) (matrix.Matrix, error) {
	t, err := tier.Parse(tierName)
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("unknown tier %q", tierName), err)
	}
	row = strings.TrimSpace(row)
	value = strings.TrimSpace(value)

	return e.run(ctx, func(sess *session.Session, working matrix.Matrix) error {
		if !working.Has(row, t) {
			return apperrors.NotFoundError(fmt.Sprintf("no cell %s/%s", row, t)).
				WithField("rows", working.Rows())
		}
		return sess.Blur(row, t, value)
	})
}

// Clear sets every cell to zero and saves.
func (e *Editor) Clear(ctx context.Context) (matrix.Matrix, error) {
	return e.run(ctx, func(sess *session.Session, _ matrix.Matrix) error {
		return sess.Clear()
	})
}

func (e *Editor) run(ctx context.Context, fn func(*session.Session, matrix.Matrix) error) (matrix.Matrix, error) {
	if e.Backend == nil {
		return nil, errors.New("app: no backend configured")
	}
	sess := session.New(e.Backend, e.Options...)
	if err := sess.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := sess.EditToggle(); err != nil {
		return nil, err
	}
	if err := fn(sess, sess.View().Working); err != nil {
		return nil, err
	}
	if err := sess.Save(ctx); err != nil {
		return nil, err
	}
	return sess.View().Original, nil
}
