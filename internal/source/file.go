package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/riteshshukladev/FinSight/internal/common"
	"github.com/riteshshukladev/FinSight/internal/model"
)

// FileSource reads raw messages from a JSON export (an array of
// sender/timestampMs/body objects). It stands in for a device inbox on
// platforms without direct SMS access.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the given JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List returns messages at or after minTimestamp, newest first, capped at
// maxCount. A file that exists but is unreadable maps to a permission
// failure, which aborts the run the same way a denied READ_SMS grant would.
func (s *FileSource) List(ctx context.Context, minTimestamp time.Time, maxCount int) ([]model.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", common.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("failed to read message file: %w", err)
	}

	var messages []model.RawMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse message file: %w", err)
	}

	minMs := minTimestamp.UnixMilli()
	kept := make([]model.RawMessage, 0, len(messages))
	for _, m := range messages {
		if m.TimestampMs >= minMs {
			kept = append(kept, m)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].TimestampMs > kept[j].TimestampMs
	})

	if maxCount > 0 && len(kept) > maxCount {
		kept = kept[:maxCount]
	}

	return kept, nil
}
