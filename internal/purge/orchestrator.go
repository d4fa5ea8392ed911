// Package purge removes every record a user owns across the data partitions,
// the profile document, blob storage and finally the identity store.
package purge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/observability/metrics"
)

var tracer = otel.Tracer("github.com/gosuda/adminpanel/internal/purge")

// DefaultPageSize bounds the number of records removed per atomic batch.
const DefaultPageSize = 300

// DefaultUploadPrefix is formatted with the user's uid.
const DefaultUploadPrefix = "userUploads/%s/"

// DefaultPartitions lists the user-owned collections purged on deletion.
func DefaultPartitions() []domain.Partition {
	return []domain.Partition{
		{Name: "messages", Table: "messages", OwnerField: "user_id"},
		{Name: "memberships", Table: "memberships", OwnerField: "user_id"},
		{Name: "uploads", Table: "uploads", OwnerField: "user_id"},
		{Name: "notifications", Table: "notifications", OwnerField: "user_id"},
		{Name: "chats", Table: "chats", OwnerField: "owner_id"},
	}
}

// Options configures an Orchestrator. Zero values take the defaults above.
type Options struct {
	Partitions   []domain.Partition
	PageSize     int
	UploadPrefix string
}

// Orchestrator runs the purge steps in a fixed order. The identity account is
// removed last so a failed run leaves a data-less user that can be purged
// again.
type Orchestrator struct {
	partitions   domain.PartitionRepository
	profiles     domain.ProfileRepository
	blobs        domain.BlobStore
	accounts     domain.AccountRepository
	targets      []domain.Partition
	pageSize     int
	uploadPrefix string
}

func NewOrchestrator(
	partitions domain.PartitionRepository,
	profiles domain.ProfileRepository,
	blobs domain.BlobStore,
	accounts domain.AccountRepository,
	opts Options,
) *Orchestrator {
	if len(opts.Partitions) == 0 {
		opts.Partitions = DefaultPartitions()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.UploadPrefix == "" {
		opts.UploadPrefix = DefaultUploadPrefix
	}

	return &Orchestrator{
		partitions:   partitions,
		profiles:     profiles,
		blobs:        blobs,
		accounts:     accounts,
		targets:      opts.Partitions,
		pageSize:     opts.PageSize,
		uploadPrefix: opts.UploadPrefix,
	}
}

// Purge is safe to repeat: already-removed data counts as zero deletions and
// a missing account is treated as deleted. Per-partition failures are
// reported in the result. The only returned error is a failure to delete the
// identity account, in which case the results are still valid.
func (o *Orchestrator) Purge(ctx context.Context, uid string) (_ domain.PurgeResult, err error) {
	ctx, span := tracer.Start(ctx, "purge.Purge")
	start := time.Now()
	defer func() {
		result := metrics.ResultOK
		if err != nil {
			result = metrics.ResultError
			span.RecordError(err)
			span.SetStatus(codes.Error, "account delete failed")
		}
		metrics.ObservePurge(result, time.Since(start))
		span.End()
	}()

	logger := log.With().Str("uid", uid).Logger()
	results := make(domain.PurgeResult, len(o.targets))

	for _, p := range o.targets {
		n, err := o.purgePartition(ctx, p, uid)
		metrics.ObservePurgePartition(p.Name, n, err != nil)
		if err != nil {
			logger.Warn().Err(err).Str("partition", p.Name).Int("deleted", n).Msg("purge: partition failed")
			results[p.Name] = domain.PurgeFailed
			continue
		}
		results[p.Name] = n
	}
	span.SetAttributes(attribute.StringSlice("purge.failed_partitions", results.Failed()))

	if err := o.profiles.Delete(ctx, uid); err != nil {
		logger.Warn().Err(err).Msg("purge: profile delete failed")
	}

	prefix := o.BlobPrefix(uid)
	if n, err := o.blobs.DeleteByPrefix(ctx, prefix); err != nil {
		logger.Warn().Err(err).Str("prefix", prefix).Msg("purge: blob delete failed")
	} else if n > 0 {
		logger.Debug().Int("objects", n).Str("prefix", prefix).Msg("purge: blobs removed")
	}

	err = o.accounts.Delete(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug().Msg("purge: account already absent")
		err = nil
	}
	if err != nil {
		return results, fmt.Errorf("purge.Purge: delete account: %w", err)
	}

	return results, nil
}

// purgePartition deletes pages until one comes back short. It returns the
// count removed so far together with any error.
func (o *Orchestrator) purgePartition(ctx context.Context, p domain.Partition, uid string) (total int, err error) {
	ctx, span := tracer.Start(ctx, "purge.partition", trace.WithAttributes(
		attribute.String("purge.partition", p.Name),
	))
	defer func() {
		span.SetAttributes(attribute.Int("purge.deleted", total))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "partition purge failed")
		}
		span.End()
	}()

	for {
		n, err := o.partitions.DeleteOwned(ctx, p, uid, o.pageSize)
		if err != nil {
			return total, fmt.Errorf("purge.purgePartition %s: %w", p.Name, err)
		}
		total += n
		if n < o.pageSize {
			return total, nil
		}
	}
}

// BlobPrefix returns the storage prefix holding uid's uploads.
func (o *Orchestrator) BlobPrefix(uid string) string {
	if strings.Contains(o.uploadPrefix, "%s") {
		return fmt.Sprintf(o.uploadPrefix, uid)
	}
	return strings.TrimSuffix(o.uploadPrefix, "/") + "/" + uid + "/"
}
