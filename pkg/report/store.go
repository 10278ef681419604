package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zhengshuai-xiao/chunkshare/pkg/histogram"
	"github.com/zhengshuai-xiao/chunkshare/pkg/registry"
)

// Run is one finished analysis, as handed to a Store.
type Run struct {
	ID        string
	Created   time.Time
	Manifests []string
	Sharing   *histogram.Histogram
	Frequency *histogram.Histogram
	Summary   histogram.Summary
}

// Store persists finished runs for an external plotting collaborator.
type Store interface {
	Name() string
	SaveRun(ctx context.Context, run *Run) error
	Shutdown() error
}

// NewRun derives every output of a frozen registry. An empty id gets a
// fresh uuid.
func NewRun(id string, reg *registry.Registry) (*Run, error) {
	if id == "" {
		id = uuid.New().String()
	}
	sharing, err := histogram.Sharing(reg, reg.Manifests())
	if err != nil {
		return nil, err
	}
	names := make([]string, reg.Manifests())
	for i := range names {
		names[i] = reg.OwnerName(i + 1)
	}
	return &Run{
		ID:        id,
		Created:   time.Now(),
		Manifests: names,
		Sharing:   sharing,
		Frequency: histogram.Frequency(reg),
		Summary:   histogram.Summarize(reg),
	}, nil
}
