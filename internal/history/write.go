// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"path/filepath"

	"github.com/bartekus/projreport/internal/projection"
)

// IndexFile is the entry point of the history; it duplicates page 1.
const IndexFile = "log.html"

// WritePages writes every page to dir as log<N>.html and copies page 1 to
// log.html. No pages means no files.
func WritePages(dir string, pages []Page) error {
	for _, p := range pages {
		if err := projection.AtomicWrite(filepath.Join(dir, p.FileName()), p.HTML); err != nil {
			return fmt.Errorf("writing history page %d: %w", p.Number, err)
		}
	}
	if len(pages) == 0 {
		return nil
	}
	if err := projection.AtomicWrite(filepath.Join(dir, IndexFile), pages[0].HTML); err != nil {
		return fmt.Errorf("writing %s: %w", IndexFile, err)
	}
	return nil
}
