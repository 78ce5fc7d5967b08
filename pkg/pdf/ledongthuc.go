package pdf

import (
	"context"
	"fmt"
	"log/slog"

	lpdf "github.com/ledongthuc/pdf"
)

// walkLedongthuc reads pages with the ledongthuc/pdf library
func walkLedongthuc(ctx context.Context, path string, logger *slog.Logger, fn pageFunc) (err error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	defer f.Close()
	defer recoverMalformed(&err)

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		if err := fn(objectPage(i, page.V, logger)); err != nil {
			return err
		}
	}
	return nil
}
