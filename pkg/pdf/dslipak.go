package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gopdf "github.com/dslipak/pdf"
)

// walkDslipak reads pages with the dslipak/pdf library
func walkDslipak(ctx context.Context, path string, logger *slog.Logger, fn pageFunc) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	defer recoverMalformed(&err)
	r, err := gopdf.NewReader(f, fi.Size())
	if err != nil {
		return fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}

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
