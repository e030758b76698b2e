package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/catcare/pkg/core"
)

// Mode selects how an import is applied to existing slots.
type Mode string

const (
	// ModeMerge unions records by id (incoming wins) and shallow-merges mappings.
	ModeMerge Mode = "merge"
	// ModeReplace overwrites every slot present in the import.
	ModeReplace Mode = "replace"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMerge, ModeReplace:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown import mode %q (want merge or replace)", s)
	}
}

// ApplyReport summarizes the outcome of Apply.
type ApplyReport struct {
	Mode    Mode              `json:"mode"`
	Applied []string          `json:"applied"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Partial reports whether some slots failed while others were written.
func (r ApplyReport) Partial() bool {
	return len(r.Failed) > 0 && len(r.Applied) > 0
}

// Apply writes a validated import into the store.
//
// Every slot is read-modify-written on its own; a failing slot is recorded in
// the report and the remaining slots are still processed. The returned error
// wraps core.ErrImportApply only when nothing could be written or the store
// reported itself unavailable. After the writes, registered mirrors are
// refreshed from the store.
func (s *Service) Apply(ctx context.Context, imp *Import, mode Mode) (ApplyReport, error) {
	if imp == nil {
		return ApplyReport{}, core.ErrNoPreview
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return ApplyReport{}, err
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	report := ApplyReport{Mode: mode, Applied: []string{}}
	var cause error

	for _, slot := range imp.Slots {
		if err := ctx.Err(); err != nil {
			cause = err
			break
		}
		if err := s.applySlot(ctx, slot, mode); err != nil {
			s.logger.Warn("failed to apply slot", "key", slot.Key, "mode", mode, "error", err)
			if report.Failed == nil {
				report.Failed = make(map[string]string)
			}
			report.Failed[slot.Key] = err.Error()
			if cause == nil || errors.Is(err, core.ErrUnavailable) {
				cause = err
			}
			continue
		}
		report.Applied = append(report.Applied, slot.Key)
	}

	if len(report.Applied) > 0 {
		for _, m := range s.mirrors {
			m.Refresh(ctx)
		}
	}
	s.recordApply(s.now())

	if cause != nil && (len(report.Applied) == 0 || errors.Is(cause, core.ErrUnavailable) || ctx.Err() != nil) {
		return report, &core.ImportError{
			Stage: core.StageApply,
			File:  imp.Filename,
			Err:   fmt.Errorf("%w: %w", core.ErrImportApply, cause),
		}
	}

	s.logger.Info("import applied",
		"file", imp.Filename,
		"mode", mode,
		"applied", len(report.Applied),
		"failed", len(report.Failed),
	)
	return report, nil
}

func (s *Service) applySlot(ctx context.Context, slot SlotValue, mode Mode) error {
	next := slot.Value
	if mode == ModeMerge {
		existing, err := s.readExisting(ctx, slot.Key)
		if err != nil {
			return err
		}
		next = MergeValue(existing, slot.Value)
	}

	encoded, err := next.Encode()
	if err != nil {
		return err
	}
	return s.store.Set(ctx, slot.Key, encoded)
}

// readExisting returns the current slot value. Absent or unparsable slots
// read as a null scalar.
func (s *Service) readExisting(ctx context.Context, key string) (core.Value, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return core.Value{}, fmt.Errorf("failed to read slot: %w", err)
	}
	if !ok || raw == "" {
		return core.ValueOf(nil), nil
	}
	v, err := core.ParseValue(raw)
	if err != nil {
		s.logger.Debug("existing slot is not JSON, merging over empty", "key", key)
		return core.ValueOf(nil), nil
	}
	return v, nil
}

// MergeValue combines an existing slot value with an incoming one:
// sequences merge by record id, mappings shallow-merge, and anything else is
// replaced by the incoming value. An existing value of another shape counts
// as empty.
func MergeValue(existing, incoming core.Value) core.Value {
	switch incoming.Kind() {
	case core.KindSequence:
		var base []any
		if existing.Kind() == core.KindSequence {
			base = existing.Items()
		}
		return core.Sequence(MergeSequence(base, incoming.Items()))
	case core.KindMapping:
		var base map[string]any
		if existing.Kind() == core.KindMapping {
			base = existing.Fields()
		}
		return core.Mapping(MergeMapping(base, incoming.Fields()))
	default:
		return incoming
	}
}

// MergeSequence unions two record sequences by id. Existing records keep
// their order; an incoming record with a known id replaces it in place and
// new ids are appended in incoming order. Records without a usable id are
// dropped.
func MergeSequence(existing, incoming []any) []any {
	order := make([]string, 0, len(existing)+len(incoming))
	byID := make(map[string]any, len(existing)+len(incoming))

	add := func(items []any) {
		for _, item := range items {
			id, ok := core.IdentityOf(item)
			if !ok {
				continue
			}
			if _, seen := byID[id]; !seen {
				order = append(order, id)
			}
			byID[id] = item
		}
	}
	add(existing)
	add(incoming)

	merged := make([]any, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}

// MergeMapping returns existing overlaid with incoming, one level deep.
func MergeMapping(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
